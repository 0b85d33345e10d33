package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/importer"
	"github.com/ledgerbook/ledger/internal/ledger"
)

func newImportCommand(a *app) *cobra.Command {
	var account string
	var format string

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import OFX/QFX or Chase CSV exports",
		Long: "Import the named export files into an account. With no files, every\n" +
			"recognized file in the configured import directory is imported and then\n" +
			"moved to its processed/ subdirectory. Transactions already in the ledger\n" +
			"are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = a.cfg.DefaultAccount
			}
			if account == "" {
				return fmt.Errorf("no account given: use --account or set default_account")
			}
			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				return a.runImport(ctx, cmd.OutOrStdout(), s, args, account, format)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account to import into (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "file format (default: detect by extension)")

	return cmd
}

// runImport imports files, or scans the import directory when none are
// given. format is the --format flag: it wins everywhere. Otherwise named
// files use the configured format and scanned files the one Scan detected.
func (a *app) runImport(ctx context.Context, out io.Writer, s *ledger.Store, files []string, account, format string) error {
	reg := importer.DefaultRegistry()

	if len(files) > 0 {
		if format == "" {
			format = a.cfg.Import.Format
		}
		for _, path := range files {
			if err := a.importOne(ctx, out, s, reg, path, format, account); err != nil {
				return err
			}
		}
		return nil
	}

	pending, err := reg.Scan(a.cfg.Import.Dir)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintf(out, "Nothing to import in %s\n", a.cfg.Import.Dir)
		return nil
	}
	for _, f := range pending {
		fileFormat := format
		if fileFormat == "" {
			fileFormat = f.Format
		}
		if err := a.importOne(ctx, out, s, reg, f.Path, fileFormat, account); err != nil {
			return err
		}
		if err := importer.MarkProcessed(a.cfg.Import.Dir, f.Name); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) importOne(ctx context.Context, out io.Writer, s *ledger.Store, reg *importer.Registry, path, format, account string) error {
	sum, err := importer.ImportFile(ctx, s, reg, path, format, account, a.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: added %d, skipped %d duplicate(s)\n", path, len(sum.Added), len(sum.Skipped))
	return nil
}

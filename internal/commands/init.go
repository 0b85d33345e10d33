package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/config"
	"github.com/ledgerbook/ledger/internal/ledger"
)

func newInitCommand(a *app) *cobra.Command {
	var accounts []string
	var categories []string
	var defaultAccount string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			cfg.LogLevel = a.cfg.LogLevel
			cfg.DefaultAccount = defaultAccount
			cfg.Seed = config.SeedConfig{Accounts: accounts, Categories: categories}
			if cfg.DefaultAccount == "" && len(accounts) > 0 {
				cfg.DefaultAccount = accounts[0]
			}
			return a.runInit(cmd.Context(), cmd.OutOrStdout(), absDir, cfg)
		},
	}

	cmd.Flags().StringSliceVar(&accounts, "account", nil, "account to create (repeatable)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "category to create (repeatable)")
	cmd.Flags().StringVar(&defaultAccount, "default-account", "", "account used when none is given (default: first --account)")

	return cmd
}

func (a *app) runInit(ctx context.Context, out io.Writer, dir string, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := []string{
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := cfg.Database.Path + "\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	resolved := *cfg
	resolved.Resolve(dir)
	a.cfg = &resolved

	err := a.withStore(ctx, func(s *ledger.Store) error {
		for _, name := range cfg.Seed.Accounts {
			if err := s.AddAccount(ctx, name); err != nil && !errors.Is(err, ledger.ErrDuplicateEntry) {
				return err
			}
		}
		for _, name := range cfg.Seed.Categories {
			if err := s.AddCategory(ctx, name); err != nil && !errors.Is(err, ledger.ErrDuplicateEntry) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized ledger at %s\n", dir)
	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/buildinfo"
	"github.com/ledgerbook/ledger/internal/config"
	"github.com/ledgerbook/ledger/internal/ledger"
	"github.com/ledgerbook/ledger/internal/log"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	dbPath     string

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Personal finance ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "path to ledger.yaml")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAccountCommand(a),
		newCategoryCommand(a),
		newTxnCommand(a),
		newBalancesCommand(a),
		newRecalcCommand(a),
		newCheckCommand(a),
		newImportCommand(a),
		newExportCommand(a),
	)

	return rootCmd
}

// setup loads configuration and builds the logger. Values from the process
// environment win over a .env file next to the config, which wins over
// ledger.yaml.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(a.configPath)
	fileEnv, err := godotenv.Read(filepath.Join(baseDir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	cfg.ApplyEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	})
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	cfg.Resolve(baseDir)

	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)

	a.cfg = cfg
	a.logger = log.New(log.Config{Level: level, Component: log.ComponentCLI, Output: stderr})
	return nil
}

// withStore opens the ledger for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(s *ledger.Store) error) (err error) {
	s, err := ledger.Open(ctx, a.cfg.Database.Path, a.logger)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing ledger: %w", cerr)
		}
	}()
	return fn(s)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/ledger"
	"github.com/ledgerbook/ledger/internal/model"
)

func newBalancesCommand(a *app) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the balance of every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				var (
					balances []model.CategoryBalance
					err      error
				)
				if cached {
					balances, err = s.CachedCategoryBalances(ctx)
				} else {
					balances, err = s.CategoryBalances(ctx)
				}
				if err != nil {
					return err
				}
				for _, b := range balances {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %14s\n", b.Name, b.Balance.String())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "show stored balances instead of summing transactions")

	return cmd
}

func newRecalcCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Rebuild every cached balance from its transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				if err := s.Recalculate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Balances recalculated")
				return nil
			})
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report the schema version and verify cached balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				out := cmd.OutOrStdout()
				version, dirty, err := s.SchemaVersion()
				if err != nil {
					return err
				}
				if dirty {
					return fmt.Errorf("schema version %d is dirty: a migration failed part way", version)
				}
				fmt.Fprintf(out, "Schema version %d\n", version)

				drifts, err := s.Verify(ctx)
				if err != nil {
					return err
				}
				if len(drifts) == 0 {
					fmt.Fprintln(out, "All balances consistent")
					return nil
				}
				for _, d := range drifts {
					fmt.Fprintf(out, "%s %s: cached %s, actual %s\n", d.Kind, d.Name, d.Cached.String(), d.Live.String())
				}
				return fmt.Errorf("%d balance(s) out of date; run `ledger recalc`", len(drifts))
			})
		},
	}
}

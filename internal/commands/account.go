package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/ledger"
)

func newAccountCommand(a *app) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	accountCmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Create accounts",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					for _, name := range args {
						if err := s.AddAccount(ctx, name); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Added account %s\n", name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Delete an account and all of its transactions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					if err := s.RemoveAccount(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed account %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List accounts with their balances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					accounts, err := s.AccountBalances(ctx)
					if err != nil {
						return err
					}
					for _, acct := range accounts {
						fmt.Fprintf(cmd.OutOrStdout(), "%-24s %14s\n", acct.Name, acct.Balance.String())
					}
					return nil
				})
			},
		},
	)

	return accountCmd
}

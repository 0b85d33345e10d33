package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger/internal/ledger"
	"github.com/ledgerbook/ledger/internal/model"
)

func newCategoryCommand(a *app) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	categoryCmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Create categories",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					for _, name := range args {
						if err := s.AddCategory(ctx, name); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Delete a category, moving its transactions to " + model.UncategorizedName,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					if err := s.RemoveCategory(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed category %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List category names",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				return a.withStore(ctx, func(s *ledger.Store) error {
					names, err := s.Categories(ctx)
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				})
			},
		},
	)

	return categoryCmd
}

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ledgerbook/ledger/internal/id"
	"github.com/ledgerbook/ledger/internal/ledger"
	"github.com/ledgerbook/ledger/internal/model"
)

// txnFlags holds the transaction fields shared by add, edit, and list.
type txnFlags struct {
	account  string
	vendor   string
	amount   string
	category string
	memo     string
	date     string
}

func (f *txnFlags) register(fs *pflag.FlagSet, withAccount bool) {
	if withAccount {
		fs.StringVar(&f.account, "account", "", "account name")
	}
	fs.StringVar(&f.vendor, "vendor", "", "payee or payer")
	fs.StringVar(&f.amount, "amount", "", "signed amount, e.g. -12.50")
	fs.StringVar(&f.category, "category", "", "category name")
	fs.StringVar(&f.memo, "memo", "", "free-form note")
	fs.StringVar(&f.date, "date", "", "date as YYYY-MM-DD")
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// parseDate returns the zero time for an empty string.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func newTxnCommand(a *app) *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "txn",
		Short: "Record and inspect transactions",
	}
	txnCmd.AddCommand(
		newTxnAddCommand(a),
		newTxnEditCommand(a),
		newTxnShowCommand(a),
		newTxnListCommand(a),
	)
	return txnCmd
}

func newTxnAddCommand(a *app) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(f.date)
			if err != nil {
				return err
			}
			amount, err := parseAmount(f.amount)
			if err != nil {
				return err
			}
			in := model.TransactionInput{
				Account:  f.account,
				Vendor:   f.vendor,
				Amount:   amount,
				Category: f.category,
				Memo:     f.memo,
				Date:     date,
			}
			if in.Account == "" {
				in.Account = a.cfg.DefaultAccount
			}

			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				txn, err := s.AddTransaction(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id.FormatTxnID(txn.ID))
				return nil
			})
		},
	}

	f.register(cmd.Flags(), true)
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newTxnEditCommand(a *app) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := id.ParseTxnID(args[0])
			if err != nil {
				return err
			}

			var edit model.TransactionEdit
			flags := cmd.Flags()
			if flags.Changed("vendor") {
				edit.Vendor = &f.vendor
			}
			if flags.Changed("category") {
				edit.Category = &f.category
			}
			if flags.Changed("memo") {
				edit.Memo = &f.memo
			}
			if flags.Changed("amount") {
				amount, err := parseAmount(f.amount)
				if err != nil {
					return err
				}
				edit.Amount = &amount
			}
			if flags.Changed("date") && f.date != "" {
				date, err := parseDate(f.date)
				if err != nil {
					return err
				}
				edit.Date = &date
			}
			if edit.IsEmpty() {
				return fmt.Errorf("transaction %s: %w", args[0], model.ErrNoChanges)
			}

			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				txn, err := s.EditTransaction(ctx, txnID, edit)
				if err != nil {
					return err
				}
				printTransaction(cmd.OutOrStdout(), txn)
				return nil
			})
		},
	}

	f.register(cmd.Flags(), false)

	return cmd
}

func newTxnShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := id.ParseTxnID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				txn, err := s.Transaction(ctx, txnID)
				if err != nil {
					return err
				}
				printTransaction(cmd.OutOrStdout(), txn)
				return nil
			})
		},
	}
}

func newTxnListCommand(a *app) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, optionally filtered by exact field values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.TransactionFilter
			flags := cmd.Flags()
			if flags.Changed("account") {
				filter.Account = &f.account
			}
			if flags.Changed("vendor") {
				filter.Vendor = &f.vendor
			}
			if flags.Changed("category") {
				filter.Category = &f.category
			}
			if flags.Changed("memo") {
				filter.Memo = &f.memo
			}
			if flags.Changed("amount") {
				amount, err := parseAmount(f.amount)
				if err != nil {
					return err
				}
				filter.Amount = &amount
			}
			if flags.Changed("date") {
				date, err := parseDate(f.date)
				if err != nil {
					return err
				}
				filter.Date = &date
			}

			ctx := cmd.Context()
			return a.withStore(ctx, func(s *ledger.Store) error {
				txns, err := s.FilterTransactions(ctx, filter)
				if err != nil {
					return err
				}
				for _, txn := range txns {
					printTransaction(cmd.OutOrStdout(), txn)
				}
				return nil
			})
		},
	}

	f.register(cmd.Flags(), true)

	return cmd
}

func printTransaction(w io.Writer, txn model.Transaction) {
	fmt.Fprintf(w, "%-6s %s  %-12s %-28s %12s  %-16s %s\n",
		id.FormatTxnID(txn.ID),
		txn.Date.Format(model.DateFormat),
		txn.Account,
		txn.Vendor,
		txn.Amount.String(),
		txn.Category,
		txn.Memo,
	)
}

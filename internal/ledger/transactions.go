package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger/internal/balance"
	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/model"
)

const selectTransaction = `SELECT id, account, vendor, amount, category, memo, t_date FROM transactions`

// AddTransaction records a new transaction and applies its amount to the
// balances of its category and account.
//
// The account and category must exist. A transaction matching an existing
// one on vendor, amount, category, memo, and date is rejected with
// ErrTransactionExists so repeated imports are idempotent.
func (s *Store) AddTransaction(ctx context.Context, in model.TransactionInput) (model.Transaction, error) {
	if err := in.Validate(); err != nil {
		return model.Transaction{}, err
	}
	in = in.Normalize(s.now())

	txn := model.Transaction{
		Account:  in.Account,
		Vendor:   in.Vendor,
		Amount:   in.Amount,
		Category: in.Category,
		Memo:     in.Memo,
		Date:     in.Date,
	}

	err := s.withTx(ctx, func(tx *sql.Tx, bal *balance.Maintainer) error {
		if _, found, err := exists(ctx, tx, "accounts", txn.Account); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("account %q: %w", txn.Account, ErrEntryNotFound)
		}
		if _, found, err := exists(ctx, tx, "categories", txn.Category); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("category %q: %w", txn.Category, ErrEntryNotFound)
		}

		dup, err := duplicateOf(ctx, tx, txn)
		if err != nil {
			return err
		}
		if dup != 0 {
			return fmt.Errorf("%s %s on %s matches #%d: %w",
				txn.Vendor, txn.Amount, txn.Date.Format(model.DateFormat), dup, ErrTransactionExists)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (account, vendor, amount, category, memo, t_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			txn.Account, txn.Vendor, txn.Amount.String(), txn.Category, txn.Memo, txn.Date.Format(model.DateFormat))
		if err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}
		if txn.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading transaction id: %w", err)
		}

		if _, err := bal.ApplyDelta(ctx, balance.Categories, txn.Category, txn.Amount); err != nil {
			return err
		}
		_, err = bal.ApplyDelta(ctx, balance.Accounts, txn.Account, txn.Amount)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.FieldOperation, log.OpAddTxn,
		log.FieldTxnID, txn.ID,
		log.FieldAccount, txn.Account,
		log.FieldCategory, txn.Category,
		log.FieldAmount, txn.Amount.String())
	return txn, nil
}

// EditTransaction replaces the supplied fields of transaction id. When the
// amount or category changes, the old amount leaves the old category and the
// new amount enters the new one in the same database transaction. An edit
// with no usable fields writes nothing and returns the stored row.
func (s *Store) EditTransaction(ctx context.Context, id int64, edit model.TransactionEdit) (model.Transaction, error) {
	var updated model.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx, bal *balance.Maintainer) error {
		old, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}

		updated = old
		if edit.IsEmpty() {
			return nil
		}
		if edit.Vendor != nil && *edit.Vendor != "" {
			updated.Vendor = *edit.Vendor
		}
		if edit.Amount != nil {
			updated.Amount = *edit.Amount
		}
		if edit.Category != nil && model.NormalizeName(*edit.Category) != "" {
			updated.Category = model.NormalizeName(*edit.Category)
			if _, found, err := exists(ctx, tx, "categories", updated.Category); err != nil {
				return err
			} else if !found {
				return fmt.Errorf("category %q: %w", updated.Category, ErrEntryNotFound)
			}
		}
		if edit.Memo != nil && *edit.Memo != "" {
			updated.Memo = *edit.Memo
		}
		if edit.Date != nil && !edit.Date.IsZero() {
			updated.Date = model.TruncateDate(*edit.Date)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET vendor = ?, amount = ?, category = ?, memo = ?, t_date = ?
			WHERE id = ?`,
			updated.Vendor, updated.Amount.String(), updated.Category, updated.Memo,
			updated.Date.Format(model.DateFormat), id)
		if err != nil {
			return fmt.Errorf("updating transaction %d: %w", id, err)
		}

		return rebalance(ctx, bal, old, updated)
	})
	if err != nil {
		return model.Transaction{}, err
	}
	if edit.IsEmpty() {
		s.logger.DebugContext(ctx, "Edit left transaction unchanged", log.FieldTxnID, id)
		return updated, nil
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpEditTxn,
		log.FieldTxnID, id,
		log.FieldCategory, updated.Category,
		log.FieldAmount, updated.Amount.String())
	return updated, nil
}

// rebalance moves amounts between holders after an edit.
func rebalance(ctx context.Context, bal *balance.Maintainer, old, updated model.Transaction) error {
	amountChanged := !old.Amount.Equal(updated.Amount)

	if old.Category == updated.Category {
		if amountChanged {
			if _, err := bal.ApplyDelta(ctx, balance.Categories, old.Category, updated.Amount.Sub(old.Amount)); err != nil {
				return err
			}
		}
	} else {
		if _, err := bal.ApplyDelta(ctx, balance.Categories, old.Category, old.Amount.Neg()); err != nil {
			return err
		}
		if _, err := bal.ApplyDelta(ctx, balance.Categories, updated.Category, updated.Amount); err != nil {
			return err
		}
	}

	if amountChanged {
		if _, err := bal.ApplyDelta(ctx, balance.Accounts, old.Account, updated.Amount.Sub(old.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// Transaction returns a single transaction by id.
func (s *Store) Transaction(ctx context.Context, id int64) (model.Transaction, error) {
	var txn model.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx, _ *balance.Maintainer) error {
		var err error
		txn, err = getTransaction(ctx, tx, id)
		return err
	})
	return txn, err
}

// FilterTransactions returns transactions matching every set field of f,
// ordered by date then id. Amount and date are compared as exact values.
func (s *Store) FilterTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.ID != nil {
		where = append(where, "id = ?")
		args = append(args, *f.ID)
	}
	if f.Account != nil {
		where = append(where, "account = ?")
		args = append(args, model.NormalizeName(*f.Account))
	}
	if f.Vendor != nil {
		where = append(where, "vendor = ?")
		args = append(args, *f.Vendor)
	}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, model.NormalizeName(*f.Category))
	}
	if f.Memo != nil {
		where = append(where, "memo = ?")
		args = append(args, *f.Memo)
	}
	if f.Date != nil {
		where = append(where, "t_date = ?")
		args = append(args, f.Date.Format(model.DateFormat))
	}

	query := selectTransaction
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		// Amounts are text, so the amount is only checked here.
		if !f.Match(txn) {
			continue
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return out, nil
}

// Transactions returns every transaction, ordered by date then id.
func (s *Store) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return s.FilterTransactions(ctx, model.TransactionFilter{})
}

func getTransaction(ctx context.Context, tx *sql.Tx, id int64) (model.Transaction, error) {
	row := tx.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrTransactionNotFound)
	}
	return txn, err
}

// duplicateOf returns the id of a stored transaction identical to txn on
// vendor, amount, category, memo, and date, or 0.
func duplicateOf(ctx context.Context, tx *sql.Tx, txn model.Transaction) (int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, amount FROM transactions
		WHERE vendor = ? AND category = ? AND memo = ? AND t_date = ?`,
		txn.Vendor, txn.Category, txn.Memo, txn.Date.Format(model.DateFormat))
	if err != nil {
		return 0, fmt.Errorf("checking for duplicate: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return 0, fmt.Errorf("scanning duplicate candidate: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, fmt.Errorf("transaction %d amount %q: %w", id, raw, err)
		}
		if amount.Equal(txn.Amount) {
			return id, nil
		}
	}
	return 0, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		txn          model.Transaction
		amount, date string
	)
	if err := row.Scan(&txn.ID, &txn.Account, &txn.Vendor, &amount, &txn.Category, &txn.Memo, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}

	var err error
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d amount %q: %w", txn.ID, amount, err)
	}
	if txn.Date, err = parseStoredDate(date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d date %q: %w", txn.ID, date, err)
	}
	return txn, nil
}

// parseStoredDate accepts the YYYY-MM-DD form written by this package and
// tolerates a trailing time written by older tools.
func parseStoredDate(s string) (time.Time, error) {
	if len(s) > len(model.DateFormat) {
		s = s[:len(model.DateFormat)]
	}
	return time.Parse(model.DateFormat, s)
}

package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerbook/ledger/internal/balance"
	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/model"
)

// AddAccount creates an account with a zero balance.
func (s *Store) AddAccount(ctx context.Context, name string) error {
	name = model.NormalizeName(name)
	if name == "" {
		return model.ErrEmptyName
	}

	err := s.withTx(ctx, func(tx *sql.Tx, _ *balance.Maintainer) error {
		_, found, err := exists(ctx, tx, "accounts", name)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("account %q: %w", name, ErrDuplicateEntry)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO accounts (name, balance) VALUES (?, '0')`, name); err != nil {
			return fmt.Errorf("inserting account %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Account added", log.FieldOperation, log.OpAddAccount, log.FieldAccount, name)
	return nil
}

// RemoveAccount deletes an account together with all of its transactions,
// then rebuilds every balance. The deleted rows are gone before their
// deltas could be subtracted, so only a full recalculation is correct.
func (s *Store) RemoveAccount(ctx context.Context, name string) error {
	name = model.NormalizeName(name)

	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx, bal *balance.Maintainer) error {
		id, found, err := exists(ctx, tx, "accounts", name)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("account %q: %w", name, ErrEntryNotFound)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account = ?`, name)
		if err != nil {
			return fmt.Errorf("deleting transactions of %q: %w", name, err)
		}
		removed, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting account %q: %w", name, err)
		}
		return bal.RecalculateAll(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Account removed",
		log.FieldOperation, log.OpRemoveAccount,
		log.FieldAccount, name,
		log.FieldCount, removed)
	return nil
}

// Accounts returns every account name, lowercase.
func (s *Store) Accounts(ctx context.Context) ([]string, error) {
	return names(ctx, s.db, "accounts")
}

// AccountBalances returns every account with its cached balance.
func (s *Store) AccountBalances(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := s.withTx(ctx, func(_ *sql.Tx, bal *balance.Maintainer) error {
		sums, err := bal.Sums(ctx, balance.Accounts)
		if err != nil {
			return err
		}
		for _, sum := range sums {
			out = append(out, model.Account{ID: sum.ID, Name: sum.Name, Balance: sum.Cached})
		}
		return nil
	})
	return out, err
}

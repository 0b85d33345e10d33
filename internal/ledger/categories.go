package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerbook/ledger/internal/balance"
	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/model"
)

// AddCategory creates a category with a zero balance.
func (s *Store) AddCategory(ctx context.Context, name string) error {
	name = model.NormalizeName(name)
	if name == "" {
		return model.ErrEmptyName
	}

	err := s.withTx(ctx, func(tx *sql.Tx, _ *balance.Maintainer) error {
		_, found, err := exists(ctx, tx, "categories", name)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("category %q: %w", name, ErrDuplicateEntry)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (name, balance) VALUES (?, '0')`, name); err != nil {
			return fmt.Errorf("inserting category %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category added", log.FieldOperation, log.OpAddCategory, log.FieldCategory, name)
	return nil
}

// RemoveCategory moves the category's transactions to "uncategorized",
// recalculates every balance, and only then deletes the category row.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	name = model.NormalizeName(name)
	if name == model.UncategorizedName {
		return fmt.Errorf("category %q: %w", name, ErrProtectedCategory)
	}

	var moved int64
	err := s.withTx(ctx, func(tx *sql.Tx, bal *balance.Maintainer) error {
		id, found, err := exists(ctx, tx, "categories", name)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("category %q: %w", name, ErrEntryNotFound)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category = ? WHERE category = ?`, model.UncategorizedName, name)
		if err != nil {
			return fmt.Errorf("reassigning transactions of %q: %w", name, err)
		}
		moved, _ = res.RowsAffected()

		if err := bal.RecalculateAll(ctx); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting category %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category removed",
		log.FieldOperation, log.OpRemoveCategory,
		log.FieldCategory, name,
		log.FieldCount, moved)
	return nil
}

// Categories returns every category name, lowercase.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return names(ctx, s.db, "categories")
}

// CategoryBalances returns every category with the live sum of its
// transactions. Categories without transactions report zero.
func (s *Store) CategoryBalances(ctx context.Context) ([]model.CategoryBalance, error) {
	return s.categoryBalances(ctx, func(sum balance.Sum) model.CategoryBalance {
		return model.CategoryBalance{ID: sum.ID, Name: sum.Name, Balance: sum.Live}
	})
}

// CachedCategoryBalances returns every category with its stored balance.
func (s *Store) CachedCategoryBalances(ctx context.Context) ([]model.CategoryBalance, error) {
	return s.categoryBalances(ctx, func(sum balance.Sum) model.CategoryBalance {
		return model.CategoryBalance{ID: sum.ID, Name: sum.Name, Balance: sum.Cached}
	})
}

func (s *Store) categoryBalances(ctx context.Context, pick func(balance.Sum) model.CategoryBalance) ([]model.CategoryBalance, error) {
	var out []model.CategoryBalance
	err := s.withTx(ctx, func(_ *sql.Tx, bal *balance.Maintainer) error {
		sums, err := bal.Sums(ctx, balance.Categories)
		if err != nil {
			return err
		}
		for _, sum := range sums {
			out = append(out, pick(sum))
		}
		return nil
	})
	return out, err
}

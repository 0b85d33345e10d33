// Package ledger is the persistent store for accounts, categories, and
// transactions. Every mutating operation runs in one SQL transaction and
// leaves cached balances equal to the sums of the underlying transactions.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerbook/ledger/internal/balance"
	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/storage"
)

// Store owns the database handle. Create it with Open or New and release it
// with Close.
type Store struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating and migrating if needed) the ledger database at path.
func Open(ctx context.Context, path string, logger *log.Logger, opts ...Option) (*Store, error) {
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s := New(db, logger, opts...)
	s.logger.DebugContext(ctx, "Ledger opened", log.FieldDBPath, path)
	return s, nil
}

// New wraps an already migrated database.
func New(db *sql.DB, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{
		db:     db,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SchemaVersion reports the applied schema migration version and whether a
// migration was left half-applied.
func (s *Store) SchemaVersion() (uint, bool, error) {
	return storage.SchemaVersion(s.db)
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// withTx runs fn inside one database transaction. Any error from fn rolls
// back every statement fn executed.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx, bal *balance.Maintainer) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx, balance.New(tx, s.logger)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// exists reports whether table has a row named name, ignoring case.
func exists(ctx context.Context, tx *sql.Tx, table, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up %s %q: %w", table, name, err)
	}
	return id, true, nil
}

func names(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Package balance keeps the cached balance columns of categories and accounts
// equal to the exact sum of their transactions' amounts.
//
// Amounts are stored as decimal strings and always summed in Go with
// shopspring/decimal. SQLite's SUM would convert them to REAL.
package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger/internal/log"
)

// ErrUnknownName is returned when a delta targets a row that does not exist.
var ErrUnknownName = errors.New("no such balance holder")

// DBTX is the subset of *sql.DB / *sql.Tx the maintainer needs. The ledger
// store always passes the *sql.Tx of the operation in progress.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Kind identifies a table with a cached balance and the transactions column
// that references it by name.
type Kind struct {
	table  string
	column string
}

var (
	Categories = Kind{table: "categories", column: "category"}
	Accounts   = Kind{table: "accounts", column: "account"}
)

// Kinds lists every balance holder, in recalculation order.
var Kinds = []Kind{Categories, Accounts}

func (k Kind) String() string { return k.table }

// Sum pairs a holder's cached balance with the live sum of its transactions.
type Sum struct {
	ID     int64
	Name   string
	Cached decimal.Decimal
	Live   decimal.Decimal
}

// Consistent reports whether the cache agrees with the ledger.
func (s Sum) Consistent() bool {
	return s.Cached.Equal(s.Live)
}

// Maintainer applies balance changes within a single database transaction.
type Maintainer struct {
	db     DBTX
	logger *log.Logger
}

// New creates a Maintainer bound to db.
func New(db DBTX, logger *log.Logger) *Maintainer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Maintainer{db: db, logger: logger.WithComponent(log.ComponentBalance)}
}

// ApplyDelta adds delta to the cached balance of the named holder and returns
// the new balance. A NULL or empty cached balance counts as zero.
func (m *Maintainer) ApplyDelta(ctx context.Context, kind Kind, name string, delta decimal.Decimal) (decimal.Decimal, error) {
	var raw sql.NullString
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT balance FROM %s WHERE name = ?`, kind.table), name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%s %q: %w", kind, name, ErrUnknownName)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading %s balance %q: %w", kind, name, err)
	}

	current, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", kind, name, err)
	}

	updated := current.Add(delta)
	if err := m.write(ctx, kind, name, updated); err != nil {
		return decimal.Zero, err
	}

	m.logger.DebugContext(ctx, "Balance adjusted",
		"kind", kind.String(),
		"name", name,
		log.FieldDelta, delta.String(),
		"balance", updated.String())
	return updated, nil
}

// Sums returns every holder of kind with its cached balance and the live sum
// over transactions. Holders without transactions have a live sum of zero.
func (m *Maintainer) Sums(ctx context.Context, kind Kind) ([]Sum, error) {
	query := fmt.Sprintf(`
		SELECT h.id, h.name, h.balance, t.amount
		FROM %s h
		LEFT OUTER JOIN transactions t ON t.%s = h.name
		ORDER BY h.id`, kind.table, kind.column)

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s sums: %w", kind, err)
	}
	defer rows.Close()

	var sums []Sum
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id          int64
			name        string
			cached, amt sql.NullString
		)
		if err := rows.Scan(&id, &name, &cached, &amt); err != nil {
			return nil, fmt.Errorf("scanning %s sum: %w", kind, err)
		}

		i, seen := index[id]
		if !seen {
			c, err := parseAmount(cached)
			if err != nil {
				return nil, fmt.Errorf("%s %q cached balance: %w", kind, name, err)
			}
			sums = append(sums, Sum{ID: id, Name: name, Cached: c, Live: decimal.Zero})
			i = len(sums) - 1
			index[id] = i
		}

		a, err := parseAmount(amt)
		if err != nil {
			return nil, fmt.Errorf("%s %q transaction amount: %w", kind, name, err)
		}
		sums[i].Live = sums[i].Live.Add(a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s sums: %w", kind, err)
	}
	return sums, nil
}

// RecalculateAll rebuilds every cached balance from the transactions table.
// It is idempotent and is the reference ApplyDelta must agree with.
func (m *Maintainer) RecalculateAll(ctx context.Context) error {
	for _, kind := range Kinds {
		sums, err := m.Sums(ctx, kind)
		if err != nil {
			return err
		}

		fixed := 0
		for _, s := range sums {
			if !s.Consistent() {
				fixed++
			}
			if err := m.write(ctx, kind, s.Name, s.Live); err != nil {
				return err
			}
		}

		m.logger.DebugContext(ctx, "Balances recalculated",
			"kind", kind.String(),
			log.FieldCount, len(sums),
			"corrected", fixed)
	}
	return nil
}

func (m *Maintainer) write(ctx context.Context, kind Kind, name string, value decimal.Decimal) error {
	_, err := m.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET balance = ? WHERE name = ?`, kind.table),
		value.String(), name)
	if err != nil {
		return fmt.Errorf("writing %s balance %q: %w", kind, name, err)
	}
	return nil
}

func parseAmount(raw sql.NullString) (decimal.Decimal, error) {
	if !raw.Valid || raw.String == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw.String, err)
	}
	return d, nil
}

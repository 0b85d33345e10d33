package balance

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledger/internal/storage"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func exec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func addTxn(t *testing.T, db *sql.DB, account, category, amount string) {
	t.Helper()
	exec(t, db, `INSERT INTO transactions (account, vendor, amount, category, memo, t_date)
		VALUES (?, 'v', ?, ?, '', '2024-01-01')`, account, amount, category)
}

func cached(t *testing.T, db *sql.DB, kind Kind, name string) decimal.Decimal {
	t.Helper()
	var raw string
	require.NoError(t, db.QueryRow(`SELECT balance FROM `+kind.table+` WHERE name = ?`, name).Scan(&raw))
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func TestApplyDeltaIsExact(t *testing.T) {
	db := openDB(t)
	exec(t, db, `INSERT INTO categories (name) VALUES ('food')`)
	m := New(db, nil)
	ctx := context.Background()

	_, err := m.ApplyDelta(ctx, Categories, "food", decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	got, err := m.ApplyDelta(ctx, Categories, "food", decimal.RequireFromString("0.2"))
	require.NoError(t, err)

	assert.Equal(t, "0.3", got.String())
	assert.Equal(t, "0.3", cached(t, db, Categories, "food").String())
}

func TestApplyDeltaEmptyBalanceIsZero(t *testing.T) {
	db := openDB(t)
	exec(t, db, `INSERT INTO accounts (name, balance) VALUES ('checking', '')`)
	m := New(db, nil)

	got, err := m.ApplyDelta(context.Background(), Accounts, "checking", decimal.RequireFromString("-4.20"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("-4.2")))
}

func TestApplyDeltaUnknownName(t *testing.T) {
	db := openDB(t)
	m := New(db, nil)

	_, err := m.ApplyDelta(context.Background(), Categories, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestSumsIncludeEmptyHolders(t *testing.T) {
	db := openDB(t)
	exec(t, db, `INSERT INTO categories (name) VALUES ('food'), ('rent')`)
	addTxn(t, db, "checking", "food", "12.345")
	addTxn(t, db, "checking", "food", "-2.005")

	sums, err := New(db, nil).Sums(context.Background(), Categories)
	require.NoError(t, err)
	require.Len(t, sums, 3)

	byName := make(map[string]Sum)
	for _, s := range sums {
		byName[s.Name] = s
	}
	assert.Equal(t, "10.34", byName["food"].Live.String())
	assert.True(t, byName["rent"].Live.IsZero())
	assert.True(t, byName["uncategorized"].Live.IsZero())
	assert.False(t, byName["food"].Consistent(), "cache has not been updated yet")
	assert.True(t, byName["rent"].Consistent())
}

func TestRecalculateAll(t *testing.T) {
	db := openDB(t)
	exec(t, db, `INSERT INTO categories (name, balance) VALUES ('food', '999')`)
	exec(t, db, `INSERT INTO accounts (name, balance) VALUES ('checking', '5'), ('savings', '1')`)
	addTxn(t, db, "checking", "food", "19.99")
	addTxn(t, db, "checking", "uncategorized", "0.01")
	addTxn(t, db, "checking", "food", "-9.99")

	m := New(db, nil)
	ctx := context.Background()
	require.NoError(t, m.RecalculateAll(ctx))

	assert.Equal(t, "10", cached(t, db, Categories, "food").String())
	assert.Equal(t, "0.01", cached(t, db, Categories, "uncategorized").String())
	assert.Equal(t, "10.01", cached(t, db, Accounts, "checking").String())
	assert.True(t, cached(t, db, Accounts, "savings").IsZero())

	// Idempotent.
	require.NoError(t, m.RecalculateAll(ctx))
	for _, kind := range Kinds {
		sums, err := m.Sums(ctx, kind)
		require.NoError(t, err)
		for _, s := range sums {
			assert.True(t, s.Consistent(), "%s %s", kind, s.Name)
		}
	}
}

func TestApplyDeltaAgreesWithRecalculate(t *testing.T) {
	db := openDB(t)
	exec(t, db, `INSERT INTO categories (name) VALUES ('food')`)
	m := New(db, nil)
	ctx := context.Background()

	for _, amt := range []string{"19.99", "0.01", "-3.333", "100"} {
		addTxn(t, db, "checking", "food", amt)
		_, err := m.ApplyDelta(ctx, Categories, "food", decimal.RequireFromString(amt))
		require.NoError(t, err)
	}

	sums, err := m.Sums(ctx, Categories)
	require.NoError(t, err)
	for _, s := range sums {
		assert.True(t, s.Consistent(), "category %s cached=%s live=%s", s.Name, s.Cached, s.Live)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "categories", Categories.String())
	assert.Equal(t, "accounts", Accounts.String())
}

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for storage and display.
const DateFormat = "2006-01-02"

var (
	ErrEmptyName    = errors.New("name must not be empty")
	ErrEmptyAccount = errors.New("account must not be empty")
	ErrNoChanges    = errors.New("no fields to update")
)

// Transaction is a stored ledger row. Callers receive detached copies.
type Transaction struct {
	ID       int64
	Account  string
	Vendor   string
	Amount   decimal.Decimal // positive = inflow, negative = outflow
	Category string
	Memo     string
	Date     time.Time
}

// TransactionInput is what a caller supplies to record a new transaction.
type TransactionInput struct {
	Account  string
	Vendor   string
	Amount   decimal.Decimal
	Category string // empty = uncategorized
	Memo     string
	Date     time.Time // zero = today
}

// Normalize returns a copy with names lowercased and defaults applied.
func (in TransactionInput) Normalize(now time.Time) TransactionInput {
	in.Account = NormalizeName(in.Account)
	in.Category = NormalizeName(in.Category)
	if in.Category == "" {
		in.Category = UncategorizedName
	}
	if in.Date.IsZero() {
		in.Date = now
	}
	in.Date = TruncateDate(in.Date)
	return in
}

// Validate checks the fields that have no sensible default.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Account) == "" {
		return ErrEmptyAccount
	}
	return nil
}

// TransactionEdit holds optional replacements for a stored transaction.
// A nil field is left unchanged, as is an empty string.
type TransactionEdit struct {
	Vendor   *string
	Amount   *decimal.Decimal
	Category *string
	Memo     *string
	Date     *time.Time
}

// IsEmpty reports whether the edit would change nothing.
func (e TransactionEdit) IsEmpty() bool {
	return blank(e.Vendor) && e.Amount == nil && blank(e.Category) && blank(e.Memo) && e.Date == nil
}

// TransactionFilter selects transactions by exact field values. Nil fields
// are not constrained; all set fields must match.
type TransactionFilter struct {
	ID       *int64
	Account  *string
	Vendor   *string
	Amount   *decimal.Decimal
	Category *string
	Memo     *string
	Date     *time.Time
}

// Match reports whether t satisfies every set field of f.
func (f TransactionFilter) Match(t Transaction) bool {
	switch {
	case f.ID != nil && *f.ID != t.ID:
		return false
	case f.Account != nil && NormalizeName(*f.Account) != t.Account:
		return false
	case f.Vendor != nil && *f.Vendor != t.Vendor:
		return false
	case f.Amount != nil && !f.Amount.Equal(t.Amount):
		return false
	case f.Category != nil && NormalizeName(*f.Category) != t.Category:
		return false
	case f.Memo != nil && *f.Memo != t.Memo:
		return false
	case f.Date != nil && !TruncateDate(*f.Date).Equal(TruncateDate(t.Date)):
		return false
	}
	return true
}

// ImportCandidate is a transaction read from an export file, not yet stored.
type ImportCandidate struct {
	Vendor   string
	Amount   decimal.Decimal
	Category string
	Memo     string
	Posted   time.Time
}

// Input converts the candidate into a TransactionInput for account.
func (c ImportCandidate) Input(account string) TransactionInput {
	return TransactionInput{
		Account:  account,
		Vendor:   c.Vendor,
		Amount:   c.Amount,
		Category: c.Category,
		Memo:     c.Memo,
		Date:     c.Posted,
	}
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, strings.TrimSpace(s))
}

func blank(s *string) bool {
	return s == nil || *s == ""
}

package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UncategorizedName is the category every store starts with. Transactions fall
// back to it when their category is removed or left empty.
const UncategorizedName = "uncategorized"

// Account is a named source or destination that transactions are attributed to.
type Account struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}

// CategoryBalance is a category with its running balance, one row of a
// balance report.
type CategoryBalance struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}

// NormalizeName returns the stored form of an account or category name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

package ledger

import "errors"

var (
	// ErrDuplicateEntry is returned when creating an account or category whose
	// name already exists, ignoring case.
	ErrDuplicateEntry = errors.New("entry already exists")
	// ErrEntryNotFound is returned when a named account or category does not exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrTransactionExists is returned when an identical transaction is
	// already recorded. Importers treat it as "skip".
	ErrTransactionExists = errors.New("transaction already exists")
	// ErrTransactionNotFound is returned when a transaction id does not resolve.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrProtectedCategory is returned when removing the fallback category.
	ErrProtectedCategory = errors.New("category cannot be removed")
)

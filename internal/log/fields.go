package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldAccount   = "account"
	FieldCategory  = "category"
	FieldTxnID     = "txn_id"
	FieldVendor    = "vendor"
	FieldAmount    = "amount"
	FieldDelta     = "delta"
	FieldDate      = "date"
	FieldCount     = "count"
	FieldFile      = "file"
	FieldFormat    = "format"
	FieldRunID     = "run_id"
	FieldAdded     = "added"
	FieldSkipped   = "skipped"
	FieldDBPath    = "db_path"
)

// Components
const (
	ComponentApp      = "app"
	ComponentLedger   = "ledger"
	ComponentBalance  = "balance"
	ComponentImporter = "importer"
	ComponentCLI      = "cli"
)

// Operations
const (
	OpAddAccount     = "add_account"
	OpRemoveAccount  = "remove_account"
	OpAddCategory    = "add_category"
	OpRemoveCategory = "remove_category"
	OpAddTxn         = "add_transaction"
	OpEditTxn        = "edit_transaction"
	OpRecalculate    = "recalculate"
	OpImport         = "import"
)

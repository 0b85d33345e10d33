package importer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ledgerbook/ledger/internal/ledger"
	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/model"
)

// TransactionAdder is the part of the ledger store an import needs.
type TransactionAdder interface {
	AddTransaction(ctx context.Context, in model.TransactionInput) (model.Transaction, error)
}

// Summary reports the outcome of one import run.
type Summary struct {
	RunID   string
	Added   []model.Transaction
	Skipped []model.ImportCandidate
}

// Apply adds each candidate to account. Candidates the ledger already holds
// are skipped; any other error stops the run. Transactions added before the
// error stay recorded, so rerunning the same file is safe.
func Apply(ctx context.Context, store TransactionAdder, account string, candidates []model.ImportCandidate, logger *log.Logger) (Summary, error) {
	if logger == nil {
		logger = log.Discard()
	}
	sum := Summary{RunID: uuid.NewString()}
	logger = logger.WithComponent(log.ComponentImporter).With(log.FieldRunID, sum.RunID)

	for i, c := range candidates {
		txn, err := store.AddTransaction(ctx, c.Input(account))
		if errors.Is(err, ledger.ErrTransactionExists) {
			logger.DebugContext(ctx, "Duplicate skipped",
				log.FieldVendor, c.Vendor,
				log.FieldAmount, c.Amount.String(),
				log.FieldDate, c.Posted.Format(model.DateFormat))
			sum.Skipped = append(sum.Skipped, c)
			continue
		}
		if err != nil {
			logger.ErrorContext(ctx, "Import aborted",
				log.FieldOperation, log.OpImport,
				log.FieldAdded, len(sum.Added),
				log.FieldError, err)
			return sum, fmt.Errorf("candidate %d (%s %s): %w", i+1, c.Vendor, c.Amount, err)
		}
		sum.Added = append(sum.Added, txn)
	}

	logger.InfoContext(ctx, "Import applied",
		log.FieldOperation, log.OpImport,
		log.FieldAccount, account,
		log.FieldAdded, len(sum.Added),
		log.FieldSkipped, len(sum.Skipped))
	return sum, nil
}

// ImportFile parses path with the named format (or by extension when format
// is empty) and applies the result to account.
func ImportFile(ctx context.Context, store TransactionAdder, reg *Registry, path, format, account string, logger *log.Logger) (Summary, error) {
	var p Parser
	if format != "" {
		p = reg.Get(format)
		if p == nil {
			return Summary{}, fmt.Errorf("unknown import format %q (have %v)", format, reg.Formats())
		}
	} else {
		p = reg.Detect(path)
		if p == nil {
			return Summary{}, fmt.Errorf("cannot detect format of %s (have %v)", path, reg.Formats())
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	candidates, err := p.Parse(f)
	if err != nil {
		return Summary{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if logger != nil {
		logger.WithComponent(log.ComponentImporter).DebugContext(ctx, "File parsed",
			log.FieldFile, path, log.FieldFormat, p.Format(), log.FieldCount, len(candidates))
	}
	return Apply(ctx, store, account, candidates, logger)
}

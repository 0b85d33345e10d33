package ledger

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger/internal/balance"
	"github.com/ledgerbook/ledger/internal/log"
)

// Drift describes a cached balance that disagrees with its transactions.
type Drift struct {
	Kind   string
	Name   string
	Cached decimal.Decimal
	Live   decimal.Decimal
}

// Recalculate rebuilds every category and account balance from scratch.
func (s *Store) Recalculate(ctx context.Context) error {
	err := s.withTx(ctx, func(_ *sql.Tx, bal *balance.Maintainer) error {
		return bal.RecalculateAll(ctx)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Balances recalculated", log.FieldOperation, log.OpRecalculate)
	return nil
}

// Verify compares every cached balance with a fresh sum and returns the ones
// that disagree. It changes nothing.
func (s *Store) Verify(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	err := s.withTx(ctx, func(_ *sql.Tx, bal *balance.Maintainer) error {
		for _, kind := range balance.Kinds {
			sums, err := bal.Sums(ctx, kind)
			if err != nil {
				return err
			}
			for _, sum := range sums {
				if !sum.Consistent() {
					drifts = append(drifts, Drift{Kind: kind.String(), Name: sum.Name, Cached: sum.Cached, Live: sum.Live})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(drifts) > 0 {
		s.logger.WarnContext(ctx, "Balance drift detected", log.FieldCount, len(drifts))
	}
	return drifts, nil
}

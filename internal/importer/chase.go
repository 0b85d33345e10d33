package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Extensions returns the file extensions this parser claims.
func (p *ChaseParser) Extensions() []string { return []string{".csv"} }

// Parse reads a Chase CSV. The bank's transaction type becomes the memo.
func (p *ChaseParser) Parse(r io.Reader) ([]model.ImportCandidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.ImportCandidate
	for i, rec := range records[1:] {
		c, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseChaseRow(rec []string) (model.ImportCandidate, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[chaseColDate]))
	if err != nil {
		return model.ImportCandidate{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[chaseColAmount]))
	if err != nil {
		return model.ImportCandidate{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	return model.ImportCandidate{
		Vendor:   strings.TrimSpace(rec[chaseColDesc]),
		Amount:   amount,
		Category: model.UncategorizedName,
		Memo:     strings.TrimSpace(rec[chaseColType]),
		Posted:   date,
	}, nil
}

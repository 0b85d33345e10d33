package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerbook/ledger/internal/model"
)

// CSVHeader is the header row written by WriteCSV.
const CSVHeader = "id,date,account,vendor,amount,category,memo"

const (
	numFields   = 7
	colID       = 0
	colDate     = 1
	colAccount  = 2
	colVendor   = 3
	colAmount   = 4
	colCategory = 5
	colMemo     = 6
)

// WriteCSV writes transactions with a header row.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(txn.ID, 10)
	row[colDate] = txn.Date.Format(model.DateFormat)
	row[colAccount] = txn.Account
	row[colVendor] = txn.Vendor
	row[colAmount] = txn.Amount.String()
	row[colCategory] = txn.Category
	row[colMemo] = txn.Memo
	return row
}

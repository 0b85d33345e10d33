package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix marks a transaction ID in CLI output, e.g. "#42".
const Prefix = "#"

// FormatTxnID returns a transaction ID like "#42".
func FormatTxnID(id int64) string {
	return Prefix + strconv.FormatInt(id, 10)
}

// ParseTxnID parses "42" or "#42" into a transaction ID.
func ParseTxnID(s string) (int64, error) {
	base := strings.TrimPrefix(strings.TrimSpace(s), Prefix)
	if base == "" {
		return 0, fmt.Errorf("invalid transaction ID: %q", s)
	}
	n, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction ID %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid transaction ID %q: must be positive", s)
	}
	return n, nil
}

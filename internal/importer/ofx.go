package importer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger/internal/model"
)

// OFXParser reads the STMTTRN records of an OFX (Quicken/Money) export.
// Both the XML flavour (OFX 2.x) and the SGML flavour (OFX 1.x, leaf
// elements left unclosed) are accepted.
type OFXParser struct{}

const (
	ofxDateTimeLayout = "20060102150405"
	ofxDateLayout     = "20060102"
)

// Leaf elements that SGML OFX leaves unclosed.
var ofxLeaves = []string{
	"TRNTYPE", "DTPOSTED", "DTUSER", "DTAVAIL", "TRNAMT", "FITID", "CHECKNUM",
	"REFNUM", "SIC", "PAYEEID", "NAME", "MEMO", "CURDEF", "BANKID", "ACCTID",
	"ACCTTYPE", "DTSTART", "DTEND", "BALAMT", "DTASOF", "CODE", "SEVERITY",
	"DTSERVER", "LANGUAGE", "TRNUID", "ORG", "FID", "INTU.BID", "MESSAGE",
}

var errMissingField = errors.New("missing field")

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Extensions returns the file extensions this parser claims.
func (p *OFXParser) Extensions() []string { return []string{".ofx", ".qfx"} }

// Parse returns one candidate per STMTTRN, in file order, each filed under
// the uncategorized category.
func (p *OFXParser) Parse(r io.Reader) ([]model.ImportCandidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX: %w", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	if isSGML(data) {
		dec.Strict = false
		dec.AutoClose = ofxLeaves
	}

	var (
		out     []model.ImportCandidate
		current map[string]string
		pending string
		index   int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing OFX: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToUpper(t.Name.Local)
			if name == "STMTTRN" {
				current = make(map[string]string)
				pending = ""
				continue
			}
			if current != nil {
				pending = name
			}
		case xml.CharData:
			if current == nil || pending == "" {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				if _, seen := current[pending]; !seen {
					current[pending] = text
				}
				pending = ""
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) != "STMTTRN" || current == nil {
				continue
			}
			index++
			c, err := candidateFromOFX(current)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", index, err)
			}
			out = append(out, c)
			current = nil
			pending = ""
		}
	}
	return out, nil
}

func candidateFromOFX(fields map[string]string) (model.ImportCandidate, error) {
	rawAmount, ok := fields["TRNAMT"]
	if !ok {
		return model.ImportCandidate{}, fmt.Errorf("TRNAMT: %w", errMissingField)
	}
	amount, err := parseOFXAmount(rawAmount)
	if err != nil {
		return model.ImportCandidate{}, err
	}

	rawDate, ok := fields["DTPOSTED"]
	if !ok {
		return model.ImportCandidate{}, fmt.Errorf("DTPOSTED: %w", errMissingField)
	}
	posted, err := ParseOFXDate(rawDate)
	if err != nil {
		return model.ImportCandidate{}, err
	}

	return model.ImportCandidate{
		Vendor:   fields["NAME"],
		Amount:   amount,
		Category: model.UncategorizedName,
		Memo:     fields["MEMO"],
		Posted:   posted,
	}, nil
}

// parseOFXAmount reads TRNAMT. A comma is the decimal separator when the
// value has no '.', and a thousands separator otherwise.
func parseOFXAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.Replace(s, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	return amount, nil
}

// ParseOFXDate parses an OFX date-time such as "20230115120000.000[-5:EST]".
// Everything from the first '.' or '[' on is discarded and the remaining
// YYYYMMDDHHMMSS (or bare YYYYMMDD) is read as UTC.
func ParseOFXDate(s string) (time.Time, error) {
	base := strings.TrimSpace(s)
	if i := strings.IndexAny(base, ".["); i >= 0 {
		base = base[:i]
	}

	layout := ofxDateTimeLayout
	if len(base) == len(ofxDateLayout) {
		layout = ofxDateLayout
	}
	t, err := time.Parse(layout, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// isSGML reports whether data uses the OFX 1.x SGML header rather than XML.
func isSGML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<?xml")) {
		return false
	}
	return bytes.Contains(head, []byte("OFXSGML")) || bytes.HasPrefix(head, []byte("OFXHEADER:"))
}

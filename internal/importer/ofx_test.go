package importer

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledger/internal/model"
)

func TestParseOFXDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"20230115120000", time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)},
		{"20230115120000.000", time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)},
		{"20230115235959.123[-5:EST]", time.Date(2023, 1, 15, 23, 59, 59, 0, time.UTC)},
		{"20230115120000[+1:CET]", time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)},
		{"20230203", time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseOFXDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "2023-01-15", "202301", "20231345120000"} {
		_, err := ParseOFXDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseOFXAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-42.17", "-42.17"},
		{"1,234.56", "1234.56"},
		{"-12,345,678.9", "-12345678.9"},
		{"42,17", "42.17"},
		{" 100 ", "100"},
	}
	for _, tt := range tests {
		got, err := parseOFXAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}

	for _, bad := range []string{"", "abc", "1,2,3"} {
		_, err := parseOFXAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestOFXParser_ThousandsSeparator(t *testing.T) {
	doc := `<OFX><STMTTRN><DTPOSTED>20230101</DTPOSTED><TRNAMT>1,234.56</TRNAMT><NAME>RENT</NAME></STMTTRN></OFX>`
	cands, err := (&OFXParser{}).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "1234.56", cands[0].Amount.String())
}

func TestOFXParser_XML(t *testing.T) {
	f, err := os.Open("testdata/statement.ofx")
	require.NoError(t, err)
	defer f.Close()

	cands, err := (&OFXParser{}).Parse(f)
	require.NoError(t, err)
	require.Len(t, cands, 3)

	first := cands[0]
	assert.Equal(t, "CORNER GROCERY", first.Vendor)
	assert.Equal(t, "POS PURCHASE", first.Memo)
	assert.Equal(t, "-42.17", first.Amount.String())
	assert.Equal(t, model.UncategorizedName, first.Category)
	assert.Equal(t, time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC), first.Posted)

	second := cands[1]
	assert.Equal(t, "PAYROLL & CO", second.Vendor)
	assert.Equal(t, "2500.005", second.Amount.String(), "amounts keep every decimal place")
	assert.Equal(t, "2023-01-31", second.Posted.Format(model.DateFormat))

	assert.Equal(t, first.Vendor, cands[2].Vendor)
	assert.True(t, first.Amount.Equal(cands[2].Amount))
}

func TestOFXParser_SGML(t *testing.T) {
	f, err := os.Open("testdata/statement_sgml.qfx")
	require.NoError(t, err)
	defer f.Close()

	cands, err := (&OFXParser{}).Parse(f)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "STREAMING SERVICE", cands[0].Vendor)
	assert.Equal(t, "MONTHLY", cands[0].Memo)
	assert.Equal(t, "-9.99", cands[0].Amount.String())
	assert.Equal(t, "2023-02-03", cands[0].Posted.Format(model.DateFormat))

	assert.Equal(t, "PAYMENT THANK YOU", cands[1].Vendor)
	assert.Empty(t, cands[1].Memo)
	assert.Equal(t, "100", cands[1].Amount.String())
}

func TestOFXParser_NoTransactions(t *testing.T) {
	cands, err := (&OFXParser{}).Parse(strings.NewReader(`<OFX><BANKMSGSRSV1></BANKMSGSRSV1></OFX>`))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestOFXParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			"missing amount",
			`<OFX><STMTTRN><DTPOSTED>20230101</DTPOSTED><NAME>x</NAME></STMTTRN></OFX>`,
			"TRNAMT",
		},
		{
			"missing date",
			`<OFX><STMTTRN><TRNAMT>1.00</TRNAMT></STMTTRN></OFX>`,
			"DTPOSTED",
		},
		{
			"bad amount",
			`<OFX><STMTTRN><DTPOSTED>20230101</DTPOSTED><TRNAMT>abc</TRNAMT></STMTTRN></OFX>`,
			"parsing amount",
		},
		{
			"bad date",
			`<OFX><STMTTRN><DTPOSTED>yesterday</DTPOSTED><TRNAMT>1</TRNAMT></STMTTRN></OFX>`,
			"parsing date",
		},
		{
			"malformed xml",
			`<OFX><STMTTRN></OFX>`,
			"parsing OFX",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&OFXParser{}).Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

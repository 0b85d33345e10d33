package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledger/internal/model"
)

func TestChaseParser_Parse(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	cands, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Len(t, cands, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", cands[0].Vendor)
	assert.Equal(t, "-4.00", cands[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", cands[0].Memo)
	assert.Equal(t, model.UncategorizedName, cands[0].Category)
	assert.Equal(t, "2025-01-03", cands[0].Posted.Format(model.DateFormat))

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", cands[3].Vendor)
	assert.True(t, cands[3].Amount.IsPositive())
	assert.Equal(t, "3500.00", cands[3].Amount.StringFixed(2))
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	cands, err := p.Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"))
	require.NoError(t, err)
	assert.Nil(t, cands)
}

func TestChaseParser_BadRows(t *testing.T) {
	header := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "parsing date"},
		{"bad amount", "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n", "parsing amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ChaseParser{}).Parse(strings.NewReader(header + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("ofx"))

	r.Register(&OFXParser{})
	require.NotNil(t, r.Get("OFX"))
	assert.Equal(t, "ofx", r.Get("ofx").Format())
	assert.Panics(t, func() { r.Register(&OFXParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"chase", "ofx"}, r.Formats())

	tests := []struct {
		path string
		want string
	}{
		{"statement.ofx", "ofx"},
		{"STATEMENT.QFX", "ofx"},
		{"export.csv", "chase"},
		{"notes.txt", ""},
	}
	for _, tt := range tests {
		p := r.Detect(tt.path)
		if tt.want == "" {
			assert.Nil(t, p, tt.path)
			continue
		}
		require.NotNil(t, p, tt.path)
		assert.Equal(t, tt.want, p.Format(), tt.path)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, processedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.ofx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, processedDir, "old.ofx"), []byte("data"), 0o644))

	files, err := DefaultRegistry().Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "bank.csv", files[0].Name)
	assert.Equal(t, "chase", files[0].Format)
	assert.Equal(t, "jan.ofx", files[1].Name)
	assert.Equal(t, "ofx", files[1].Format)
	assert.Equal(t, int64(4), files[1].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := DefaultRegistry().Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.ofx"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "jan.ofx"))

	_, err := os.Stat(filepath.Join(dir, "jan.ofx"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, processedDir, "jan.ofx"))
	assert.NoError(t, err)

	assert.Error(t, MarkProcessed(dir, "missing.ofx"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledger/internal/storage"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DefaultAccount = "checking"
	cfg.Seed = SeedConfig{
		Accounts:   []string{"checking", "savings"},
		Categories: []string{"groceries", "rent"},
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "import", cfg.Import.Dir)
	assert.Empty(t, cfg.DefaultAccount)
	assert.Empty(t, cfg.Seed.Accounts)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("default_account: savings\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "savings", cfg.DefaultAccount)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("database: [\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	cfg.Seed.Categories = []string{"groceries"}
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: ledger.db")
	assert.Contains(t, contents, "log_level: warn")
	assert.Contains(t, contents, "dir: import")
	assert.Contains(t, contents, "- groceries")
	assert.NotContains(t, contents, "default_account")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDBPath:         "/tmp/other.db",
		EnvLogLevel:       "debug",
		EnvDefaultAccount: "savings",
	}
	cfg := Default()
	cfg.Import.Dir = "inbox"
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "savings", cfg.DefaultAccount)
	assert.Equal(t, "inbox", cfg.Import.Dir, "unset variables leave values alone")
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Import.Dir = "/abs/import"
	cfg.Resolve("/home/me/books")

	assert.Equal(t, filepath.Join("/home/me/books", "ledger.db"), cfg.Database.Path)
	assert.Equal(t, "/abs/import", cfg.Import.Dir)

	mem := Default()
	mem.Database.Path = storage.MemoryPath
	mem.Resolve("/home/me/books")
	assert.Equal(t, storage.MemoryPath, mem.Database.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   []string
	}{
		{"empty db path", func(c *Config) { c.Database.Path = " " }, []string{"database path"}},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, []string{"loud"}},
		{"blank seed account", func(c *Config) { c.Seed.Accounts = []string{"checking", ""} }, []string{"seed account"}},
		{"blank seed category", func(c *Config) { c.Seed.Categories = []string{" "} }, []string{"seed category"}},
		{
			"several problems",
			func(c *Config) { c.Database.Path = ""; c.LogLevel = "loud" },
			[]string{"database path", "loud"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

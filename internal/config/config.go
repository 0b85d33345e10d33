package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgerbook/ledger/internal/log"
	"github.com/ledgerbook/ledger/internal/storage"
)

// FileName is the config file written by `ledger init`.
const FileName = "ledger.yaml"

// Environment overrides applied by ApplyEnv.
const (
	EnvDBPath         = "LEDGER_DB_PATH"
	EnvLogLevel       = "LEDGER_LOG_LEVEL"
	EnvDefaultAccount = "LEDGER_DEFAULT_ACCOUNT"
	EnvImportDir      = "LEDGER_IMPORT_DIR"
)

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Database       DatabaseConfig `yaml:"database"`
	LogLevel       string         `yaml:"log_level"`
	DefaultAccount string         `yaml:"default_account,omitempty"`
	Import         ImportConfig   `yaml:"import"`
	Seed           SeedConfig     `yaml:"seed"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the config file's directory
}

// ImportConfig controls the import directory scan.
type ImportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format,omitempty"` // empty means detect by extension
}

// SeedConfig lists the accounts and categories `ledger init` creates.
type SeedConfig struct {
	Accounts   []string `yaml:"accounts,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
}

// Load reads a ledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "ledger.db"},
		LogLevel: "warn",
		Import:   ImportConfig{Dir: "import"},
	}
}

// ApplyEnv overrides file values with non-empty LEDGER_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvDefaultAccount); v != "" {
		c.DefaultAccount = v
	}
	if v := getenv(EnvImportDir); v != "" {
		c.Import.Dir = v
	}
}

// Resolve makes relative paths absolute against baseDir. The in-memory
// database path is left alone.
func (c *Config) Resolve(baseDir string) {
	if c.Database.Path != "" && c.Database.Path != storage.MemoryPath && !filepath.IsAbs(c.Database.Path) {
		c.Database.Path = filepath.Join(baseDir, c.Database.Path)
	}
	if c.Import.Dir != "" && !filepath.IsAbs(c.Import.Dir) {
		c.Import.Dir = filepath.Join(baseDir, c.Import.Dir)
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	for _, name := range c.Seed.Accounts {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "seed account names cannot be empty")
			break
		}
	}
	for _, name := range c.Seed.Categories {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "seed category names cannot be empty")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

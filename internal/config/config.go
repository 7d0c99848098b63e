// Package config loads the converter configuration. Values are read from a
// YAML file, then overridden by a .env file and LEDGER_* environment
// variables. A loaded Config is treated as immutable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "statement-ledger.yaml"

// Config is the process-wide converter configuration.
type Config struct {
	Institution   string         `yaml:"institution"` // narration for deposits and withdrawals
	Commodity     string         `yaml:"commodity"`
	Indent        string         `yaml:"indent"`
	LineWidth     int            `yaml:"line_width"`
	Accounts      Accounts       `yaml:"accounts"`
	Rules         string         `yaml:"rules"` // posting rule set, "current" or "legacy"
	RuleOverrides []RuleOverride `yaml:"rule_overrides,omitempty"`
	AssetBalance  bool           `yaml:"asset_balance"`
	OCR           bool           `yaml:"ocr"`
	Debug         bool           `yaml:"debug"` // flush output after every transaction
	Cache         CacheConfig    `yaml:"cache"`
	History       HistoryConfig  `yaml:"history"`
	Server        ServerConfig   `yaml:"server"`
}

// Accounts holds the ledger account names postings are booked to.
type Accounts struct {
	Asset   string `yaml:"asset"`
	Funds   string `yaml:"funds"`
	Bank    string `yaml:"bank"`
	Income  string `yaml:"income"`
	Expense string `yaml:"expense"`
}

// Name returns the account configured for role.
func (a Accounts) Name(role models.Role) (string, bool) {
	var name string
	switch role {
	case models.RoleAsset:
		name = a.Asset
	case models.RoleFunds:
		name = a.Funds
	case models.RoleBank:
		name = a.Bank
	case models.RoleIncome:
		name = a.Income
	case models.RoleExpense:
		name = a.Expense
	}
	return name, name != ""
}

// RuleOverride adds or replaces one entry of the posting rule table.
type RuleOverride struct {
	Comment  string `yaml:"comment"`
	Account  string `yaml:"account"`            // role: funds, bank, income, expense
	Polarity string `yaml:"polarity,omitempty"` // either, debit, credit
}

// CacheConfig controls the extracted-text cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HistoryConfig controls the conversion history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit int    `yaml:"body_limit"` // bytes
}

// Default returns the configuration for Funding Societies statements.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Institution: "Funding Societies",
		Commodity:   "RM",
		Indent:      "\t",
		LineWidth:   62,
		Accounts: Accounts{
			Asset:   "assets:fundingsocieties",
			Funds:   "assets:funds:fundingsocieties",
			Bank:    "assets:bank:pbe",
			Income:  "income:interest",
			Expense: "expenses:service",
		},
		Rules: "current",
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "text-cache.db"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "history.db"),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			BodyLimit: 32 << 20,
		},
	}
}

func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".statement-ledger"
	}
	return filepath.Join(dir, "statement-ledger")
}

// Load reads a YAML config file on top of Default. A missing file at the
// default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
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

// ApplyEnv loads envPath (or ./.env when empty, ignoring a missing file)
// and applies LEDGER_* overrides.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	setString(&c.Institution, "LEDGER_INSTITUTION")
	setString(&c.Commodity, "LEDGER_COMMODITY")
	setString(&c.Rules, "LEDGER_RULES")
	setString(&c.Accounts.Asset, "LEDGER_ACCOUNT_ASSET")
	setString(&c.Accounts.Funds, "LEDGER_ACCOUNT_FUNDS")
	setString(&c.Accounts.Bank, "LEDGER_ACCOUNT_BANK")
	setString(&c.Accounts.Income, "LEDGER_ACCOUNT_INCOME")
	setString(&c.Accounts.Expense, "LEDGER_ACCOUNT_EXPENSE")
	setString(&c.Cache.Path, "LEDGER_CACHE_PATH")
	setString(&c.History.Path, "LEDGER_HISTORY_PATH")
	setString(&c.Server.Addr, "LEDGER_ADDR")

	if err := setInt(&c.LineWidth, "LEDGER_LINE_WIDTH"); err != nil {
		return err
	}
	for key, dst := range map[string]*bool{
		"LEDGER_ASSET_BALANCE":   &c.AssetBalance,
		"LEDGER_OCR":             &c.OCR,
		"LEDGER_DEBUG":           &c.Debug,
		"LEDGER_CACHE_ENABLED":   &c.Cache.Enabled,
		"LEDGER_HISTORY_ENABLED": &c.History.Enabled,
	} {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the configuration can render a ledger.
func (c *Config) Validate() error {
	var missing []string
	if c.Commodity == "" {
		missing = append(missing, "commodity")
	}
	for _, role := range []models.Role{models.RoleAsset, models.RoleFunds, models.RoleBank, models.RoleIncome, models.RoleExpense} {
		if _, ok := c.Accounts.Name(role); !ok {
			missing = append(missing, "accounts."+string(role))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	if c.LineWidth <= 0 {
		return fmt.Errorf("line_width must be positive, got %d", c.LineWidth)
	}
	for i, o := range c.RuleOverrides {
		if o.Comment == "" {
			return fmt.Errorf("rule_overrides[%d]: comment is required", i)
		}
		switch models.Role(o.Account) {
		case models.RoleFunds, models.RoleBank, models.RoleIncome, models.RoleExpense:
		default:
			return fmt.Errorf("rule_overrides[%d]: unknown account role %q", i, o.Account)
		}
		switch o.Polarity {
		case "", "either", "debit", "credit":
		default:
			return fmt.Errorf("rule_overrides[%d]: unknown polarity %q", i, o.Polarity)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid boolean value for %s: %s", key, v)
	}
	*dst = b
	return nil
}

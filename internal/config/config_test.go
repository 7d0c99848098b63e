package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Funding Societies", cfg.Institution)
	assert.Equal(t, "RM", cfg.Commodity)
	assert.Equal(t, "\t", cfg.Indent)
	assert.Equal(t, 62, cfg.LineWidth)
	assert.Equal(t, "current", cfg.Rules)
	assert.Equal(t, "assets:funds:fundingsocieties", cfg.Accounts.Funds)
	require.NoError(t, cfg.Validate())
}

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Rules = "legacy"
	cfg.AssetBalance = true
	cfg.RuleOverrides = []RuleOverride{
		{Comment: "Recovery", Account: "funds", Polarity: "credit"},
	}

	path := filepath.Join(t.TempDir(), "statement-ledger.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Institution, got.Institution)
	assert.Equal(t, cfg.Commodity, got.Commodity)
	assert.Equal(t, cfg.Indent, got.Indent)
	assert.Equal(t, cfg.LineWidth, got.LineWidth)
	assert.Equal(t, cfg.Accounts, got.Accounts)
	assert.Equal(t, "legacy", got.Rules)
	assert.True(t, got.AssetBalance)
	require.Len(t, got.RuleOverrides, 1)
	assert.Equal(t, "Recovery", got.RuleOverrides[0].Comment)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commodity: SGD\naccounts:\n  bank: assets:bank:dbs\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SGD", cfg.Commodity)
	assert.Equal(t, "assets:bank:dbs", cfg.Accounts.Bank)
	assert.Equal(t, "assets:fundingsocieties", cfg.Accounts.Asset)
	assert.Equal(t, 62, cfg.LineWidth)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDefaultFileMissing(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "RM", cfg.Commodity)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LEDGER_COMMODITY", "IDR")
	t.Setenv("LEDGER_LINE_WIDTH", "80")
	t.Setenv("LEDGER_ASSET_BALANCE", "true")
	t.Setenv("LEDGER_ACCOUNT_BANK", "assets:bank:bca")

	t.Cleanup(func() { os.Unsetenv("LEDGER_RULES") })

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(writeEnv(t, "LEDGER_RULES=legacy\n")))

	assert.Equal(t, "IDR", cfg.Commodity)
	assert.Equal(t, 80, cfg.LineWidth)
	assert.True(t, cfg.AssetBalance)
	assert.Equal(t, "assets:bank:bca", cfg.Accounts.Bank)
	assert.Equal(t, "legacy", cfg.Rules)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("LEDGER_LINE_WIDTH", "wide")

	cfg := Default()
	err := cfg.ApplyEnv(writeEnv(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_LINE_WIDTH")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing commodity", func(c *Config) { c.Commodity = "" }, "commodity"},
		{"missing funds account", func(c *Config) { c.Accounts.Funds = "" }, "accounts.funds"},
		{"bad width", func(c *Config) { c.LineWidth = 0 }, "line_width"},
		{"override without comment", func(c *Config) {
			c.RuleOverrides = []RuleOverride{{Account: "income"}}
		}, "comment is required"},
		{"override unknown role", func(c *Config) {
			c.RuleOverrides = []RuleOverride{{Comment: "Bonus", Account: "equity"}}
		}, "unknown account role"},
		{"override unknown polarity", func(c *Config) {
			c.RuleOverrides = []RuleOverride{{Comment: "Bonus", Account: "income", Polarity: "both"}}
		}, "unknown polarity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAccountsName(t *testing.T) {
	a := Default().Accounts
	name, ok := a.Name(models.RoleExpense)
	assert.True(t, ok)
	assert.Equal(t, "expenses:service", name)

	_, ok = a.Name(models.Role("equity"))
	assert.False(t, ok)
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApplyEnvMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o644))
	chdir(t, dir)

	err := Default().ApplyEnv("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestApplyEnvNoDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, Default().ApplyEnv(""))
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

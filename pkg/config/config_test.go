package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, time.Hour, cfg.Server.SweepInterval)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "full", cfg.Ledger.InstallmentRecompute)
	assert.Equal(t, 30, cfg.Ledger.NearMaturityDays)
	assert.Equal(t, "settings", cfg.Rates.Source)
	assert.Equal(t, 5*time.Minute, cfg.Rates.CacheTTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fredledger.yaml")
	yaml := `
server:
  address: ":9090"
  sweep_interval: 10m
store:
  driver: pgx
  dsn: postgres://localhost/ledger
ledger:
  installment_recompute: remaining
  near_maturity_days: 14
rates:
  source: redis
  redis:
    key_prefix: "rates:"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("FREDLEDGER_STORE_DSN", "postgres://override/ledger")
	t.Setenv("FREDLEDGER_LEDGER_BASE_CURRENCY", "USD")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 10*time.Minute, cfg.Server.SweepInterval)
	assert.Equal(t, "pgx", cfg.Store.Driver)
	assert.Equal(t, "postgres://override/ledger", cfg.Store.DSN)
	assert.Equal(t, "remaining", cfg.Ledger.InstallmentRecompute)
	assert.Equal(t, 14, cfg.Ledger.NearMaturityDays)
	assert.Equal(t, "USD", cfg.Ledger.BaseCurrency)
	assert.Equal(t, "redis", cfg.Rates.Source)
	assert.Equal(t, "rates:", cfg.Rates.Redis.KeyPrefix)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnum(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FREDLEDGER_LEDGER_INSTALLMENT_RECOMPUTE", "sometimes")

	_, err := Load("")
	assert.ErrorContains(t, err, "installment_recompute")
}

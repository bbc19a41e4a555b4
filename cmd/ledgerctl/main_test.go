package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransfer_JSON(t *testing.T) {
	out, err := run(t, "transfer", "--amount", "100", "--fee", "2.5", "--bearer", "receiver", "--balance", "1000", "-o", "json")
	require.NoError(t, err)

	var result models.TransferResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.DebitFromSource.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.CreditToDestination.Equal(decimal.RequireFromString("97.5")))
	assert.True(t, result.FeeRecorded.Equal(decimal.RequireFromString("2.5")))
}

func TestTransfer_Table(t *testing.T) {
	out, err := run(t, "transfer", "--amount", "100", "--fee", "2.5", "--balance", "1000")
	require.NoError(t, err)

	assert.Contains(t, out, "DEBIT")
	assert.Contains(t, out, "102.50")
}

func TestTransfer_DailyLimit(t *testing.T) {
	_, err := run(t, "transfer", "--amount", "100", "--balance", "1000", "--daily-limit", "500", "--daily-used", "450")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily")

	_, err = run(t, "transfer", "--amount", "100", "--balance", "1000", "--daily-limit", "500", "--daily-used", "450", "--pending")
	assert.NoError(t, err)
}

func TestTransfer_BadAmount(t *testing.T) {
	_, err := run(t, "transfer", "--amount", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--amount")
}

func TestSchedule(t *testing.T) {
	out, err := run(t, "schedule", "--principal", "1200000", "--months", "12", "--admin-fee", "60000",
		"--start", "2024-01-15", "--as-of", "2024-04-01", "--paid", "1", "-o", "json")
	require.NoError(t, err)

	var schedule scheduleOutput
	require.NoError(t, json.Unmarshal([]byte(out), &schedule))
	assert.Equal(t, "full", schedule.Mode)
	require.Len(t, schedule.Entries, 12)
	assert.True(t, schedule.Entries[0].TotalAmount.Equal(decimal.NewFromInt(160000)))
	assert.Equal(t, models.EntryStatusPaid, schedule.Entries[0].Status)
	assert.Equal(t, models.EntryStatusOverdue, schedule.Entries[1].Status)
	assert.Equal(t, models.EntryStatusUpcoming, schedule.Entries[2].Status)
}

func TestSchedule_ModeFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fredledger.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ledger:\n  installment_recompute: remaining\n"), 0o644))

	out, err := run(t, "schedule", "--config", cfgPath, "--principal", "300", "--months", "3", "--start", "2024-01-15", "-o", "json")
	require.NoError(t, err)

	var schedule scheduleOutput
	require.NoError(t, json.Unmarshal([]byte(out), &schedule))
	assert.Equal(t, "remaining", schedule.Mode)

	out, err = run(t, "schedule", "--config", cfgPath, "--mode", "full", "--principal", "300", "--months", "3", "--start", "2024-01-15", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &schedule))
	assert.Equal(t, "full", schedule.Mode)
}

func TestSchedule_InvalidTerm(t *testing.T) {
	_, err := run(t, "schedule", "--principal", "1000", "--months", "0")
	assert.Error(t, err)
}

func TestAccrue(t *testing.T) {
	out, err := run(t, "accrue", "--principal", "10000000", "--rate", "6",
		"--start", "2024-01-01", "--maturity", "2025-01-01", "--as-of", "2025-06-01", "-o", "json")
	require.NoError(t, err)

	var result models.AccrualResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.IsMatured)
	assert.True(t, result.TotalInterest.Equal(decimal.NewFromInt(600000)))
	assert.True(t, result.AccruedInterest.Equal(result.TotalInterest))
}

func TestAccrue_BadDate(t *testing.T) {
	_, err := run(t, "accrue", "--principal", "1000", "--start", "01/01/2024", "--maturity", "2025-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")
}

func TestCashback(t *testing.T) {
	out, err := run(t, "cashback", "--amount", "250000", "--rate", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "5000.00")

	_, err = run(t, "cashback", "--amount=-1", "--rate", "2")
	assert.Error(t, err)
}

func TestRate_SetAndGet(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fredledger.yaml")
	cfg := "store:\n  dsn: " + filepath.Join(dir, "ledger.db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := run(t, "rate", "--config", cfgPath)
	require.Error(t, err)

	out, err := run(t, "rate", "--config", cfgPath, "--set", "15750", "-o", "json")
	require.NoError(t, err)

	var rate rateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &rate))
	assert.True(t, rate.Rate.Equal(decimal.NewFromInt(15750)))
	assert.Equal(t, "IDR", rate.BaseCurrency)

	out, err = run(t, "rate", "--config", cfgPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "15750"))
}

func TestRate_StaticSourceIsReadOnly(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fredledger.yaml")
	cfg := "store:\n  dsn: " + filepath.Join(dir, "ledger.db") + "\nrates:\n  source: static\n  static_rate: \"15000\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := run(t, "rate", "--config", cfgPath, "--set", "16000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")

	out, err := run(t, "rate", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)
	var rate rateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &rate))
	assert.True(t, rate.Rate.Equal(decimal.NewFromInt(15000)))
}

func TestUnknownOutput(t *testing.T) {
	_, err := run(t, "cashback", "--amount", "10", "-o", "xml")
	assert.Error(t, err)
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestmentJSON_CarriesKind(t *testing.T) {
	inv := Investment{
		ID:       uuid.New(),
		Name:     "BTC wallet",
		Currency: "USD",
		Holding: Cryptocurrency{
			Symbol:        "BTC",
			Units:         decimal.RequireFromString("0.5"),
			PurchasePrice: decimal.NewFromInt(30000),
			CurrentPrice:  decimal.NewFromInt(60000),
		},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(inv)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &generic))
	assert.Equal(t, "cryptocurrency", generic["kind"])

	var decoded Investment
	require.NoError(t, json.Unmarshal(body, &decoded))
	crypto, ok := decoded.Holding.(Cryptocurrency)
	require.True(t, ok, "expected Cryptocurrency holding, got %T", decoded.Holding)
	assert.Equal(t, "BTC", crypto.Symbol)
	assert.True(t, crypto.Units.Equal(decimal.RequireFromString("0.5")))
}

func TestInvestmentJSON_CertificateEmbedsInstrument(t *testing.T) {
	body := []byte(`{
		"id": "6f1c1a3e-7c1e-4b7e-9a57-1f1f1f1f1f1f",
		"name": "1y certificate",
		"currency": "EGP",
		"kind": "certificate",
		"holding": {
			"principal": "10000",
			"annual_rate_percent": "20",
			"start_date": "2024-01-01T00:00:00Z",
			"maturity_date": "2025-01-01T00:00:00Z"
		}
	}`)

	var inv Investment
	require.NoError(t, json.Unmarshal(body, &inv))
	cert, ok := inv.Holding.(Certificate)
	require.True(t, ok)
	assert.True(t, cert.Principal.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 2025, cert.MaturityDate.Year())
}

func TestInvestmentJSON_RejectsUnknownKind(t *testing.T) {
	body := []byte(`{"name": "mystery", "kind": "bond", "holding": {}}`)

	var inv Investment
	assert.Error(t, json.Unmarshal(body, &inv))
}

func TestInvestmentJSON_RequiresHolding(t *testing.T) {
	_, err := json.Marshal(Investment{ID: uuid.New(), Name: "empty"})
	assert.Error(t, err)
}

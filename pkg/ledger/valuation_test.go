package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/mcclellann/fredLedger/pkg/rates"
	"github.com/mcclellann/fredLedger/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCashback(t *testing.T) {
	cashback, err := CalculateCashback(d("250000"), d("1.5"))
	require.NoError(t, err)
	assert.True(t, cashback.Equal(d("3750")))

	_, err = CalculateCashback(d("0"), d("1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = CalculateCashback(d("100"), d("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestValueHolding(t *testing.T) {
	tests := []struct {
		name        string
		holding     models.Holding
		cost, value string
	}{
		{"gold", models.PreciousMetal{Metal: "gold", Grams: d("10"), PurchasePricePerGram: d("1000000"), CurrentPricePerGram: d("1200000")}, "10000000", "12000000"},
		{"crypto", models.Cryptocurrency{Symbol: "BTC", Units: d("0.5"), PurchasePrice: d("40000"), CurrentPrice: d("60000")}, "20000", "30000"},
		{"stock", models.Stock{Ticker: "BBCA", Shares: d("100"), PurchasePrice: d("9000"), CurrentPrice: d("8500")}, "900000", "850000"},
		{"certificate", models.Certificate{AccrualInstrument: deposit()}, "10000", "11000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cost, value, err := ValueHolding(tc.holding, date(2024, 7, 2))
			require.NoError(t, err)
			assert.True(t, cost.Equal(d(tc.cost)), "cost %s", cost)
			assertClose(t, d(tc.value), value, "0.01")
		})
	}
}

func TestValidateHolding(t *testing.T) {
	assert.NoError(t, ValidateHolding(models.Stock{Ticker: "BBCA", Shares: d("1"), PurchasePrice: d("1"), CurrentPrice: d("1")}))
	assert.ErrorIs(t, ValidateHolding(models.Stock{Shares: d("-1")}), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateHolding(nil), ErrInvalidAmount)

	bad := deposit()
	bad.MaturityDate = date(2023, 1, 1)
	assert.ErrorIs(t, ValidateHolding(models.Certificate{AccrualInstrument: bad}), ErrInvalidDateRange)
}

func TestCode(t *testing.T) {
	tests := []struct {
		err        error
		code       string
		validation bool
	}{
		{nil, "none", false},
		{fmt.Errorf("wrapped: %w", ErrInsufficientBalance), "insufficient_balance", true},
		{ErrFeeExceedsAmount, "fee_exceeds_amount", true},
		{fmt.Errorf("plan: %w", store.ErrNotFound), "not_found", false},
		{rates.ErrInvalidRate, "invalid_rate", true},
		{fmt.Errorf("%w: static", rates.ErrRateReadOnly), "rate_read_only", true},
		{fmt.Errorf("%w: circuit open", rates.ErrRateUnavailable), "rate_unavailable", false},
		{errors.New("disk on fire"), "other", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, Code(tc.err))
		assert.Equal(t, tc.validation, IsValidation(tc.err), "%v", tc.err)
	}
}

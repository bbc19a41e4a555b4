package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func limit(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func transferRequest(amount, fee string, bearer models.FeeBearer) models.TransferRequest {
	return models.TransferRequest{
		Amount:    d(amount),
		Fee:       d(fee),
		FeeBearer: bearer,
		From:      models.AccountRef{Type: models.AccountTypeBank, ID: uuid.New()},
		To:        models.AccountRef{Type: models.AccountTypeEWallet, ID: uuid.New()},
	}
}

func richSource() models.SourceState {
	return models.SourceState{Balance: d("1000000")}
}

func TestAllocate_SenderBearsFee(t *testing.T) {
	res, err := Allocate(transferRequest("1000", "50", models.FeeBearerSender), richSource(), ExecuteImmediately)
	require.NoError(t, err)

	assert.True(t, res.DebitFromSource.Equal(d("1050")), "debit %s", res.DebitFromSource)
	assert.True(t, res.CreditToDestination.Equal(d("1000")), "credit %s", res.CreditToDestination)
	assert.True(t, res.FeeRecorded.Equal(d("50")))
}

func TestAllocate_ReceiverBearsFee(t *testing.T) {
	res, err := Allocate(transferRequest("1000", "50", models.FeeBearerReceiver), richSource(), ExecuteImmediately)
	require.NoError(t, err)

	assert.True(t, res.DebitFromSource.Equal(d("1000")), "debit %s", res.DebitFromSource)
	assert.True(t, res.CreditToDestination.Equal(d("950")), "credit %s", res.CreditToDestination)
	assert.True(t, res.FeeRecorded.Equal(d("50")))
}

func TestAllocate_Conservation(t *testing.T) {
	for _, tc := range []struct{ amount, fee string }{
		{"1", "0"}, {"1000", "50"}, {"0.01", "999"}, {"123456.789", "0.5"},
	} {
		res, err := Allocate(transferRequest(tc.amount, tc.fee, models.FeeBearerNone), richSource(), ExecuteImmediately)
		require.NoError(t, err)
		assert.True(t, res.DebitFromSource.Equal(d(tc.amount)))
		assert.True(t, res.CreditToDestination.Equal(d(tc.amount)))
		assert.True(t, res.FeeRecorded.IsZero())
	}
}

func TestAllocate_FeeAllocation(t *testing.T) {
	for _, tc := range []struct{ amount, fee string }{
		{"1000", "0"}, {"1000", "50"}, {"250.25", "2.75"}, {"10", "10"},
	} {
		sender, err := Allocate(transferRequest(tc.amount, tc.fee, models.FeeBearerSender), richSource(), ExecuteImmediately)
		require.NoError(t, err)
		assert.True(t, sender.DebitFromSource.Sub(d(tc.amount)).Equal(d(tc.fee)))

		receiver, err := Allocate(transferRequest(tc.amount, tc.fee, models.FeeBearerReceiver), richSource(), ExecuteImmediately)
		require.NoError(t, err)
		assert.True(t, d(tc.amount).Sub(receiver.CreditToDestination).Equal(d(tc.fee)))
	}
}

func TestAllocate_Validation(t *testing.T) {
	same := transferRequest("100", "0", models.FeeBearerNone)
	same.To.ID = same.From.ID

	tests := []struct {
		name string
		req  models.TransferRequest
		src  models.SourceState
		want error
	}{
		{"zero amount", transferRequest("0", "0", models.FeeBearerNone), richSource(), ErrInvalidAmount},
		{"negative amount", transferRequest("-5", "0", models.FeeBearerNone), richSource(), ErrInvalidAmount},
		{"negative fee", transferRequest("5", "-1", models.FeeBearerSender), richSource(), ErrInvalidAmount},
		{"same account", same, richSource(), ErrSameAccount},
		{"fee exceeds amount", transferRequest("40", "50", models.FeeBearerReceiver), richSource(), ErrFeeExceedsAmount},
		{"unknown bearer", transferRequest("40", "5", "bank"), richSource(), ErrInvalidFeeBearer},
		{"insufficient", transferRequest("1000", "50", models.FeeBearerSender), models.SourceState{Balance: d("1049.99")}, ErrInsufficientBalance},
		{"daily limit", transferRequest("600", "0", models.FeeBearerNone),
			models.SourceState{Balance: d("10000"), DailyLimit: limit("1000"), DailyUsed: d("500")}, ErrDailyLimitExceeded},
		{"monthly limit", transferRequest("600", "0", models.FeeBearerNone),
			models.SourceState{Balance: d("10000"), MonthlyLimit: limit("5000"), MonthlyUsed: d("4500")}, ErrMonthlyLimitExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Allocate(tc.req, tc.src, ExecuteImmediately)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAllocate_ValidationOrder(t *testing.T) {
	same := transferRequest("0", "0", models.FeeBearerNone)
	same.To.ID = same.From.ID
	_, err := Allocate(same, models.SourceState{}, ExecuteImmediately)
	assert.ErrorIs(t, err, ErrInvalidAmount, "amount is checked before accounts")

	same = transferRequest("100", "0", models.FeeBearerNone)
	same.To.ID = same.From.ID
	_, err = Allocate(same, models.SourceState{}, ExecuteImmediately)
	assert.ErrorIs(t, err, ErrSameAccount, "accounts are checked before balance")

	src := models.SourceState{Balance: d("10"), DailyLimit: limit("1")}
	_, err = Allocate(transferRequest("100", "0", models.FeeBearerNone), src, ExecuteImmediately)
	assert.ErrorIs(t, err, ErrInsufficientBalance, "balance is checked before limits")

	src = models.SourceState{Balance: d("10000"), DailyLimit: limit("100"), MonthlyLimit: limit("100")}
	_, err = Allocate(transferRequest("500", "0", models.FeeBearerNone), src, ExecuteImmediately)
	assert.ErrorIs(t, err, ErrDailyLimitExceeded, "daily limit is checked before monthly")
}

func TestAllocate_LimitBoundary(t *testing.T) {
	src := models.SourceState{Balance: d("10000"), DailyLimit: limit("1000"), DailyUsed: d("400")}
	_, err := Allocate(transferRequest("600", "0", models.FeeBearerNone), src, ExecuteImmediately)
	assert.NoError(t, err, "reaching the limit exactly is allowed")

	src.DailyLimit = limit("0")
	src.DailyUsed = decimal.Zero
	_, err = Allocate(transferRequest("0.01", "0", models.FeeBearerNone), src, ExecuteImmediately)
	assert.ErrorIs(t, err, ErrDailyLimitExceeded, "a zero limit blocks everything")
}

func TestAllocate_PendingSkipsLimits(t *testing.T) {
	src := models.SourceState{
		Balance:      d("10000"),
		DailyLimit:   limit("100"),
		MonthlyLimit: limit("100"),
	}
	res, err := Allocate(transferRequest("5000", "10", models.FeeBearerSender), src, SavePending)
	require.NoError(t, err)
	assert.True(t, res.DebitFromSource.Equal(d("5010")))

	_, err = Allocate(transferRequest("20000", "0", models.FeeBearerNone), src, SavePending)
	assert.ErrorIs(t, err, ErrInsufficientBalance, "pending transfers still need the balance")
}

func TestAllocate_InsufficientBalanceMessage(t *testing.T) {
	_, err := Allocate(transferRequest("100", "0", models.FeeBearerNone), models.SourceState{Balance: d("50")}, ExecuteImmediately)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need 100.00, have 50.00")
}

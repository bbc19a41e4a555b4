package ledger

import (
	"fmt"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// ExecutionMode tells Allocate whether the transfer moves money now or is
// only recorded as intent.
type ExecutionMode int

const (
	// ExecuteImmediately enforces daily and monthly usage limits.
	ExecuteImmediately ExecutionMode = iota
	// SavePending skips usage limits; balances are not touched until completion.
	SavePending
)

// Allocate computes how much leaves the source and how much reaches the
// destination for req, and validates the source can afford it. It never
// mutates anything; the caller applies the returned deltas.
func Allocate(req models.TransferRequest, src models.SourceState, mode ExecutionMode) (models.TransferResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) || req.Fee.IsNegative() {
		return models.TransferResult{}, ErrInvalidAmount
	}
	if req.From.ID == req.To.ID {
		return models.TransferResult{}, ErrSameAccount
	}

	var result models.TransferResult
	switch req.FeeBearer {
	case models.FeeBearerSender:
		result = models.TransferResult{
			DebitFromSource:     req.Amount.Add(req.Fee),
			CreditToDestination: req.Amount,
			FeeRecorded:         req.Fee,
		}
	case models.FeeBearerReceiver:
		if req.Fee.GreaterThan(req.Amount) {
			return models.TransferResult{}, ErrFeeExceedsAmount
		}
		result = models.TransferResult{
			DebitFromSource:     req.Amount,
			CreditToDestination: req.Amount.Sub(req.Fee),
			FeeRecorded:         req.Fee,
		}
	case models.FeeBearerNone:
		result = models.TransferResult{
			DebitFromSource:     req.Amount,
			CreditToDestination: req.Amount,
			FeeRecorded:         decimal.Zero,
		}
	default:
		return models.TransferResult{}, fmt.Errorf("%w: %q", ErrInvalidFeeBearer, req.FeeBearer)
	}

	if src.Balance.LessThan(result.DebitFromSource) {
		return models.TransferResult{}, fmt.Errorf("%w: need %s, have %s",
			ErrInsufficientBalance, result.DebitFromSource.StringFixed(2), src.Balance.StringFixed(2))
	}

	if mode == ExecuteImmediately {
		if src.DailyLimit.Valid && src.DailyUsed.Add(result.DebitFromSource).GreaterThan(src.DailyLimit.Decimal) {
			return models.TransferResult{}, fmt.Errorf("%w: limit %s, used %s",
				ErrDailyLimitExceeded, src.DailyLimit.Decimal.StringFixed(2), src.DailyUsed.StringFixed(2))
		}
		if src.MonthlyLimit.Valid && src.MonthlyUsed.Add(result.DebitFromSource).GreaterThan(src.MonthlyLimit.Decimal) {
			return models.TransferResult{}, fmt.Errorf("%w: limit %s, used %s",
				ErrMonthlyLimitExceeded, src.MonthlyLimit.Decimal.StringFixed(2), src.MonthlyUsed.StringFixed(2))
		}
	}

	return result, nil
}

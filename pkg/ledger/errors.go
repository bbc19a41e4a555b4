package ledger

import (
	"errors"

	"github.com/mcclellann/fredLedger/pkg/rates"
	"github.com/mcclellann/fredLedger/pkg/store"
)

// Domain validation errors. They are recoverable by the user: the caller
// surfaces the message and lets the input be corrected.
var (
	ErrInvalidAmount        = errors.New("ledger: invalid amount")
	ErrSameAccount          = errors.New("ledger: source and destination are the same account")
	ErrInvalidFeeBearer     = errors.New("ledger: invalid fee bearer")
	ErrFeeExceedsAmount     = errors.New("ledger: fee exceeds transfer amount")
	ErrInsufficientBalance  = errors.New("ledger: insufficient balance")
	ErrDailyLimitExceeded   = errors.New("ledger: daily limit exceeded")
	ErrMonthlyLimitExceeded = errors.New("ledger: monthly limit exceeded")
	ErrInvalidTerm          = errors.New("ledger: invalid installment term")
	ErrInvalidDateRange     = errors.New("ledger: maturity date precedes start date")
	ErrInvalidAccount       = errors.New("ledger: invalid account")
	ErrPlanNotActive        = errors.New("ledger: installment plan is not active")
	ErrTransferNotPending   = errors.New("ledger: transfer is not pending")
	ErrInvalidStatus        = errors.New("ledger: invalid transfer status")
)

// IsValidation reports whether err is a domain validation error as opposed to
// a storage or infrastructure failure.
func IsValidation(err error) bool {
	switch Code(err) {
	case "none", "not_found", "rate_unavailable", "other":
		return false
	}
	return true
}

// Code returns a stable string classification of err for API responses and
// metrics labels.
func Code(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSameAccount):
		return "same_account"
	case errors.Is(err, ErrInvalidFeeBearer):
		return "invalid_fee_bearer"
	case errors.Is(err, ErrFeeExceedsAmount):
		return "fee_exceeds_amount"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrDailyLimitExceeded):
		return "daily_limit_exceeded"
	case errors.Is(err, ErrMonthlyLimitExceeded):
		return "monthly_limit_exceeded"
	case errors.Is(err, ErrInvalidTerm):
		return "invalid_term"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, ErrInvalidAccount):
		return "invalid_account"
	case errors.Is(err, ErrPlanNotActive):
		return "plan_not_active"
	case errors.Is(err, ErrTransferNotPending):
		return "transfer_not_pending"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, rates.ErrInvalidRate):
		return "invalid_rate"
	case errors.Is(err, rates.ErrRateReadOnly):
		return "rate_read_only"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, rates.ErrRateUnavailable):
		return "rate_unavailable"
	default:
		return "other"
	}
}

package ledger

import (
	"fmt"
	"time"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// CalculateCashback returns the flat cashback earned on a purchase.
func CalculateCashback(amount, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) || ratePercent.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount.Mul(ratePercent).Div(hundred), nil
}

// ValueHolding returns the cost basis and market value of h as of asOf in the
// holding's own currency.
func ValueHolding(h models.Holding, asOf time.Time) (cost, value decimal.Decimal, err error) {
	switch h := h.(type) {
	case models.PreciousMetal:
		return h.Grams.Mul(h.PurchasePricePerGram), h.Grams.Mul(h.CurrentPricePerGram), nil
	case models.Cryptocurrency:
		return h.Units.Mul(h.PurchasePrice), h.Units.Mul(h.CurrentPrice), nil
	case models.Stock:
		return h.Shares.Mul(h.PurchasePrice), h.Shares.Mul(h.CurrentPrice), nil
	case models.Certificate:
		res, err := Accrue(h.AccrualInstrument, asOf)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return h.Principal, h.Principal.Add(res.AccruedInterest), nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("unsupported holding %T", h)
	}
}

// ValidateHolding rejects negative quantities and prices and invalid
// certificate terms.
func ValidateHolding(h models.Holding) error {
	var amounts []decimal.Decimal
	switch h := h.(type) {
	case models.PreciousMetal:
		amounts = []decimal.Decimal{h.Grams, h.PurchasePricePerGram, h.CurrentPricePerGram}
	case models.Cryptocurrency:
		amounts = []decimal.Decimal{h.Units, h.PurchasePrice, h.CurrentPrice}
	case models.Stock:
		amounts = []decimal.Decimal{h.Shares, h.PurchasePrice, h.CurrentPrice}
	case models.Certificate:
		_, err := Accrue(h.AccrualInstrument, h.StartDate)
		return err
	case nil:
		return fmt.Errorf("%w: holding is required", ErrInvalidAmount)
	default:
		return fmt.Errorf("unsupported holding %T", h)
	}
	for _, a := range amounts {
		if a.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidAmount, h.Kind())
		}
	}
	return nil
}

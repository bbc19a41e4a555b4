// Package rates supplies exchange rates to portfolio valuation. Providers are
// injected into the ledger explicitly; there is no process-wide cached rate.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrRateUnavailable is returned when a provider has no rate for the
	// requested date.
	ErrRateUnavailable = errors.New("rates: exchange rate unavailable")
	// ErrInvalidRate is returned for zero, negative or unparsable rates.
	ErrInvalidRate = errors.New("rates: invalid exchange rate")
	// ErrRateReadOnly is returned when the configured source cannot store a
	// new rate.
	ErrRateReadOnly = errors.New("rates: exchange rate source is read-only")
)

// Provider returns the rate that converts one unit of foreign currency into
// the base currency on a given date.
type Provider interface {
	GetRate(ctx context.Context, date time.Time) (decimal.Decimal, error)
}

// Setter is implemented by providers that can store the current rate.
type Setter interface {
	SetRate(ctx context.Context, rate decimal.Decimal) error
}

// Invalidator is implemented by providers that hold cached rates.
type Invalidator interface {
	Invalidate()
}

// Validate rejects rates that cannot convert money.
func Validate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	return nil
}

// ParseRate parses and validates a decimal rate.
func ParseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	if err := Validate(rate); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// Static always returns the same rate.
type Static struct {
	rate decimal.Decimal
}

// NewStatic creates a provider for a fixed rate.
func NewStatic(rate decimal.Decimal) (*Static, error) {
	if err := Validate(rate); err != nil {
		return nil, err
	}
	return &Static{rate: rate}, nil
}

func (s *Static) GetRate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return s.rate, nil
}

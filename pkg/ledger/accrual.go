package ledger

import (
	"fmt"
	"time"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// DefaultNearMaturityDays is how close to maturity an instrument is flagged.
const DefaultNearMaturityDays = 30

// AccrualCalculator prorates term interest linearly between start and maturity.
type AccrualCalculator struct {
	NearMaturityDays int
}

// Accrue computes accrued interest on inst as of asOf using the default
// near-maturity window.
func Accrue(inst models.AccrualInstrument, asOf time.Time) (models.AccrualResult, error) {
	return AccrualCalculator{NearMaturityDays: DefaultNearMaturityDays}.Accrue(inst, asOf)
}

// Accrue computes accrued interest on inst as of asOf. The rate is the rate
// for the whole term. Accrual is clamped to the term so it never exceeds the
// total interest.
func (c AccrualCalculator) Accrue(inst models.AccrualInstrument, asOf time.Time) (models.AccrualResult, error) {
	if inst.Principal.LessThanOrEqual(decimal.Zero) || inst.AnnualRatePercent.IsNegative() {
		return models.AccrualResult{}, ErrInvalidAmount
	}
	if civilDate(inst.MaturityDate).Before(civilDate(inst.StartDate)) {
		return models.AccrualResult{}, fmt.Errorf("%w: start %s, maturity %s", ErrInvalidDateRange,
			inst.StartDate.Format(time.DateOnly), inst.MaturityDate.Format(time.DateOnly))
	}

	totalDays := max(1, daysBetween(inst.StartDate, inst.MaturityDate))
	elapsed := min(max(daysBetween(inst.StartDate, asOf), 0), totalDays)
	untilMaturity := daysBetween(asOf, inst.MaturityDate)
	matured := untilMaturity <= 0

	totalInterest := inst.Principal.Mul(inst.AnnualRatePercent).Div(hundred)
	accrued := totalInterest
	if matured {
		elapsed = totalDays
	} else {
		accrued = totalInterest.Mul(decimal.NewFromInt(int64(elapsed))).Div(decimal.NewFromInt(int64(totalDays)))
	}

	months := max(1, monthsBetween(inst.StartDate, inst.MaturityDate))

	return models.AccrualResult{
		AccruedInterest: accrued,
		TotalInterest:   totalInterest,
		MonthlyReturn:   totalInterest.Div(decimal.NewFromInt(int64(months))),
		IsMatured:       matured,
		IsNearMaturity:  !matured && untilMaturity <= c.NearMaturityDays,
		DaysElapsed:     elapsed,
		DaysRemaining:   totalDays - elapsed,
		TotalDays:       totalDays,
	}, nil
}

package ledger

import (
	"fmt"
	"time"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecomputeMode selects how a schedule treats months that were already paid
// when the plan terms change.
type RecomputeMode int

const (
	// RecomputeFull derives every month from the current terms, rewriting
	// the composition of paid months after an edit.
	RecomputeFull RecomputeMode = iota
	// RecomputeRemaining keeps paid months as they were settled and spreads
	// whatever is left over the unpaid months.
	RecomputeRemaining
)

func (m RecomputeMode) String() string {
	switch m {
	case RecomputeFull:
		return "full"
	case RecomputeRemaining:
		return "remaining"
	default:
		return "unknown"
	}
}

// ParseRecomputeMode parses "full" or "remaining".
func ParseRecomputeMode(s string) (RecomputeMode, error) {
	switch s {
	case "", "full":
		return RecomputeFull, nil
	case "remaining":
		return RecomputeRemaining, nil
	default:
		return RecomputeFull, fmt.Errorf("unknown installment recompute mode %q", s)
	}
}

// InstallmentSummary holds the plan-level totals of an installment purchase.
type InstallmentSummary struct {
	TotalInterest      decimal.Decimal `json:"total_interest"`
	BaseMonthlyPayment decimal.Decimal `json:"base_monthly_payment"`
	FirstPayment       decimal.Decimal `json:"first_payment"`
	TotalCost          decimal.Decimal `json:"total_cost"`
}

// Amortizer builds payment schedules for installment plans.
type Amortizer struct {
	Mode RecomputeMode
}

func validatePlan(plan models.InstallmentPlan) error {
	if plan.TotalMonths < 1 {
		return fmt.Errorf("%w: total months must be at least 1, got %d", ErrInvalidTerm, plan.TotalMonths)
	}
	if plan.PaidMonths < 0 || plan.PaidMonths > plan.TotalMonths {
		return fmt.Errorf("%w: paid months %d outside 0..%d", ErrInvalidTerm, plan.PaidMonths, plan.TotalMonths)
	}
	if plan.Principal.LessThanOrEqual(decimal.Zero) || plan.InterestRatePercent.IsNegative() || plan.AdminFee.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Summarize computes the totals of plan using simple interest over the whole
// term with the admin fee loaded onto the first payment.
func Summarize(plan models.InstallmentPlan) (InstallmentSummary, error) {
	if err := validatePlan(plan); err != nil {
		return InstallmentSummary{}, err
	}

	totalInterest := plan.Principal.Mul(plan.InterestRatePercent).Div(hundred)
	base := plan.Principal.Add(totalInterest).Div(decimal.NewFromInt(int64(plan.TotalMonths)))

	return InstallmentSummary{
		TotalInterest:      totalInterest,
		BaseMonthlyPayment: base,
		FirstPayment:       base.Add(plan.AdminFee),
		TotalCost:          plan.Principal.Add(totalInterest).Add(plan.AdminFee),
	}, nil
}

// BuildSchedule returns the schedule of plan derived entirely from its
// current terms.
func BuildSchedule(plan models.InstallmentPlan, today time.Time) ([]models.PaymentScheduleEntry, error) {
	return Amortizer{Mode: RecomputeFull}.BuildSchedule(plan, today)
}

// BuildSchedule returns one entry per month of plan. Entry status is paid for
// the first PaidMonths months, overdue when the due date is before today and
// upcoming otherwise.
func (a Amortizer) BuildSchedule(plan models.InstallmentPlan, today time.Time) ([]models.PaymentScheduleEntry, error) {
	summary, err := Summarize(plan)
	if err != nil {
		return nil, err
	}

	var settled []models.SettledInstallment
	if a.Mode == RecomputeRemaining {
		settled = frozenMonths(plan)
	}

	schedule := make([]models.PaymentScheduleEntry, 0, plan.TotalMonths)
	for _, s := range settled {
		schedule = append(schedule, models.PaymentScheduleEntry{
			MonthIndex:      s.MonthIndex,
			BaseAmount:      s.BaseAmount,
			AdminFeePortion: s.AdminFeePortion,
			TotalAmount:     s.BaseAmount.Add(s.AdminFeePortion),
		})
	}

	base := summary.BaseMonthlyPayment
	adminLeft := plan.AdminFee
	if len(settled) > 0 {
		paidBase, paidAdmin := decimal.Zero, decimal.Zero
		for _, s := range settled {
			paidBase = paidBase.Add(s.BaseAmount)
			paidAdmin = paidAdmin.Add(s.AdminFeePortion)
		}
		baseLeft := plan.Principal.Add(summary.TotalInterest).Sub(paidBase)
		adminLeft = plan.AdminFee.Sub(paidAdmin)
		remaining := plan.TotalMonths - len(settled)
		// Sub-cent residue comes from dividing the base across months.
		if remaining == 0 && !(baseLeft.Round(2).IsZero() && adminLeft.Round(2).IsZero()) {
			return nil, fmt.Errorf("%w: %s left unpaid with no months remaining", ErrInvalidTerm,
				baseLeft.Add(adminLeft).StringFixed(2))
		}
		if remaining > 0 {
			base = baseLeft.Div(decimal.NewFromInt(int64(remaining)))
		}
	}

	for i := len(settled) + 1; i <= plan.TotalMonths; i++ {
		admin := decimal.Zero
		if i == len(settled)+1 {
			admin = adminLeft
		}
		schedule = append(schedule, models.PaymentScheduleEntry{
			MonthIndex:      i,
			BaseAmount:      base,
			AdminFeePortion: admin,
			TotalAmount:     base.Add(admin),
		})
	}

	todayDate := civilDate(today)
	for i := range schedule {
		due := plan.StartDate.AddDate(0, schedule[i].MonthIndex, 0)
		schedule[i].DueDate = due
		switch {
		case schedule[i].MonthIndex <= plan.PaidMonths:
			schedule[i].Status = models.EntryStatusPaid
		case civilDate(due).Before(todayDate):
			schedule[i].Status = models.EntryStatusOverdue
		default:
			schedule[i].Status = models.EntryStatusUpcoming
		}
	}

	return schedule, nil
}

// frozenMonths returns the settled months of plan that are still paid, in
// month order and without gaps.
func frozenMonths(plan models.InstallmentPlan) []models.SettledInstallment {
	frozen := make([]models.SettledInstallment, 0, len(plan.Settled))
	for i, s := range plan.Settled {
		if s.MonthIndex != i+1 || s.MonthIndex > plan.PaidMonths {
			break
		}
		frozen = append(frozen, s)
	}
	return frozen
}

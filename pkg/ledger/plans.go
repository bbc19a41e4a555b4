package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlanAmendment lists the plan terms to change. Nil fields are kept.
type PlanAmendment struct {
	Description         *string          `json:"description,omitempty"`
	Principal           *decimal.Decimal `json:"principal,omitempty"`
	TotalMonths         *int             `json:"total_months,omitempty"`
	InterestRatePercent *decimal.Decimal `json:"interest_rate_percent,omitempty"`
	AdminFee            *decimal.Decimal `json:"admin_fee,omitempty"`
	StartDate           *time.Time       `json:"start_date,omitempty"`
	PaidMonths          *int             `json:"paid_months,omitempty"`
}

// CreateInstallmentPlan converts a credit card purchase into monthly
// installments.
func (l *Ledger) CreateInstallmentPlan(ctx context.Context, accountID uuid.UUID, description string, principal decimal.Decimal, totalMonths int, interestRatePercent, adminFee decimal.Decimal, startDate time.Time) (*models.InstallmentPlan, error) {
	account, err := l.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountTypeCreditCard {
		return nil, fmt.Errorf("%w: installments need a credit card, got %s", ErrInvalidAccount, account.Type)
	}

	now := l.clock.Now()
	if startDate.IsZero() {
		startDate = civilDate(now)
	}
	plan := &models.InstallmentPlan{
		ID:                  uuid.New(),
		AccountID:           accountID,
		Description:         description,
		Principal:           principal,
		TotalMonths:         totalMonths,
		InterestRatePercent: interestRatePercent,
		AdminFee:            adminFee,
		StartDate:           startDate,
		Status:              models.PlanStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := validatePlan(*plan); err != nil {
		return nil, err
	}

	if err := l.storage.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store installment plan: %w", err)
	}

	l.logger.Info("installment plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.Int("months", totalMonths),
	)
	return plan, nil
}

// GetInstallmentPlan retrieves a plan by its ID.
func (l *Ledger) GetInstallmentPlan(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error) {
	return l.storage.GetPlan(ctx, id)
}

// GetAllInstallmentPlans retrieves all plans, including completed and
// cancelled ones.
func (l *Ledger) GetAllInstallmentPlans(ctx context.Context) ([]*models.InstallmentPlan, error) {
	return l.storage.GetAllPlans(ctx)
}

// InstallmentSchedule returns the plan totals and its month-by-month schedule
// as of today.
func (l *Ledger) InstallmentSchedule(ctx context.Context, id uuid.UUID) (InstallmentSummary, []models.PaymentScheduleEntry, error) {
	plan, err := l.storage.GetPlan(ctx, id)
	if err != nil {
		return InstallmentSummary{}, nil, err
	}
	summary, err := Summarize(*plan)
	if err != nil {
		return InstallmentSummary{}, nil, err
	}
	schedule, err := l.schedule(plan)
	if err != nil {
		return InstallmentSummary{}, nil, err
	}
	return summary, schedule, nil
}

func (l *Ledger) schedule(plan *models.InstallmentPlan) ([]models.PaymentScheduleEntry, error) {
	schedule, err := l.amortizer.BuildSchedule(*plan, l.clock.Now())
	if err != nil {
		return nil, err
	}
	l.metrics.RecordSchedule(l.amortizer.Mode.String(), len(schedule))
	return schedule, nil
}

// RecordInstallmentPayment marks the next month of a plan as paid and
// freezes its composition. The plan completes with its last month.
func (l *Ledger) RecordInstallmentPayment(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	plan, err := l.storage.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusActive || plan.PaidMonths >= plan.TotalMonths {
		return nil, fmt.Errorf("%w: plan %s is %s", ErrPlanNotActive, id, plan.Status)
	}

	now := l.clock.Now()
	plan.PaidMonths++
	if err := l.syncSettled(plan, now); err != nil {
		return nil, err
	}
	plan.Status = planStatus(plan)
	plan.UpdatedAt = now

	if err := l.storage.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update installment plan: %w", err)
	}

	l.logger.Info("installment paid",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("paid_months", plan.PaidMonths),
		zap.String("status", string(plan.Status)),
	)
	return plan, nil
}

// AmendInstallmentPlan changes the terms of a plan. Months that stay paid keep
// their settled composition; months newly marked paid are settled from the
// amended schedule.
func (l *Ledger) AmendInstallmentPlan(ctx context.Context, id uuid.UUID, amendment PlanAmendment) (*models.InstallmentPlan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	plan, err := l.storage.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == models.PlanStatusCancelled {
		return nil, fmt.Errorf("%w: plan %s is cancelled", ErrPlanNotActive, id)
	}

	if amendment.Description != nil {
		plan.Description = *amendment.Description
	}
	if amendment.Principal != nil {
		plan.Principal = *amendment.Principal
	}
	if amendment.TotalMonths != nil {
		plan.TotalMonths = *amendment.TotalMonths
	}
	if amendment.InterestRatePercent != nil {
		plan.InterestRatePercent = *amendment.InterestRatePercent
	}
	if amendment.AdminFee != nil {
		plan.AdminFee = *amendment.AdminFee
	}
	if amendment.StartDate != nil {
		plan.StartDate = *amendment.StartDate
	}
	if amendment.PaidMonths != nil {
		plan.PaidMonths = *amendment.PaidMonths
	}
	if err := validatePlan(*plan); err != nil {
		return nil, err
	}

	now := l.clock.Now()
	if err := l.syncSettled(plan, now); err != nil {
		return nil, err
	}
	// The amended terms must still reconcile with the months already settled.
	if _, err := l.amortizer.BuildSchedule(*plan, now); err != nil {
		return nil, err
	}

	previous := plan.Status
	plan.Status = planStatus(plan)
	plan.UpdatedAt = now

	if err := l.storage.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update installment plan: %w", err)
	}

	l.logger.Info("installment plan amended",
		zap.String("plan_id", plan.ID.String()),
		zap.String("from_status", string(previous)),
		zap.String("to_status", string(plan.Status)),
	)
	return plan, nil
}

// CancelInstallmentPlan stops an active plan. Cancelled plans are kept.
func (l *Ledger) CancelInstallmentPlan(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	plan, err := l.storage.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusActive {
		return nil, fmt.Errorf("%w: plan %s is %s", ErrPlanNotActive, id, plan.Status)
	}

	plan.Status = models.PlanStatusCancelled
	plan.UpdatedAt = l.clock.Now()
	if err := l.storage.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update installment plan: %w", err)
	}

	l.logger.Info("installment plan cancelled", zap.String("plan_id", plan.ID.String()))
	return plan, nil
}

// syncSettled drops settled months that are no longer paid and settles paid
// months that have no snapshot yet from the current schedule.
func (l *Ledger) syncSettled(plan *models.InstallmentPlan, now time.Time) error {
	plan.Settled = frozenMonths(*plan)
	if len(plan.Settled) >= plan.PaidMonths {
		return nil
	}
	schedule, err := l.schedule(plan)
	if err != nil {
		return err
	}
	for _, entry := range schedule[len(plan.Settled):plan.PaidMonths] {
		plan.Settled = append(plan.Settled, settle(entry, now))
	}
	return nil
}

func settle(entry models.PaymentScheduleEntry, paidAt time.Time) models.SettledInstallment {
	return models.SettledInstallment{
		MonthIndex:      entry.MonthIndex,
		BaseAmount:      entry.BaseAmount,
		AdminFeePortion: entry.AdminFeePortion,
		PaidAt:          paidAt,
	}
}

func planStatus(plan *models.InstallmentPlan) models.PlanStatus {
	if plan.PaidMonths >= plan.TotalMonths {
		return models.PlanStatusCompleted
	}
	return models.PlanStatusActive
}

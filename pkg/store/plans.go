package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
)

const planColumns = `id, account_id, description, principal, total_months, interest_rate_percent, admin_fee, start_date, paid_months, status, settled, created_at, updated_at`

// CreatePlan inserts a new installment plan.
func (s *SQLStore) CreatePlan(ctx context.Context, plan *models.InstallmentPlan) error {
	settled, err := encodeSettled(plan.Settled)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO installment_plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID.String(), plan.AccountID.String(), plan.Description, plan.Principal, plan.TotalMonths,
		plan.InterestRatePercent, plan.AdminFee, plan.StartDate, plan.PaidMonths, string(plan.Status), settled,
		plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create installment plan: %w", err)
	}
	return nil
}

// GetPlan retrieves an installment plan by its ID.
func (s *SQLStore) GetPlan(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error) {
	row := s.queryRow(ctx, `SELECT `+planColumns+` FROM installment_plans WHERE id = ?`, id.String())
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("installment plan %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get installment plan: %w", err)
	}
	return plan, nil
}

// UpdatePlan updates an existing installment plan.
func (s *SQLStore) UpdatePlan(ctx context.Context, plan *models.InstallmentPlan) error {
	settled, err := encodeSettled(plan.Settled)
	if err != nil {
		return err
	}
	result, err := s.exec(ctx, s.db,
		`UPDATE installment_plans SET description = ?, principal = ?, total_months = ?, interest_rate_percent = ?, admin_fee = ?, start_date = ?, paid_months = ?, status = ?, settled = ?, updated_at = ? WHERE id = ?`,
		plan.Description, plan.Principal, plan.TotalMonths, plan.InterestRatePercent, plan.AdminFee,
		plan.StartDate, plan.PaidMonths, string(plan.Status), settled, plan.UpdatedAt, plan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update installment plan: %w", err)
	}
	return mustAffect(result, "installment plan")
}

// GetAllPlans retrieves all installment plans, oldest first.
func (s *SQLStore) GetAllPlans(ctx context.Context) ([]*models.InstallmentPlan, error) {
	rows, err := s.query(ctx, `SELECT `+planColumns+` FROM installment_plans ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all installment plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.InstallmentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment plan row: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return plans, nil
}

func encodeSettled(settled []models.SettledInstallment) (string, error) {
	if settled == nil {
		settled = []models.SettledInstallment{}
	}
	b, err := json.Marshal(settled)
	if err != nil {
		return "", fmt.Errorf("failed to encode settled installments: %w", err)
	}
	return string(b), nil
}

func scanPlan(row scanner) (*models.InstallmentPlan, error) {
	var plan models.InstallmentPlan
	var status, settled string
	err := row.Scan(&plan.ID, &plan.AccountID, &plan.Description, &plan.Principal, &plan.TotalMonths,
		&plan.InterestRatePercent, &plan.AdminFee, &plan.StartDate, &plan.PaidMonths, &status, &settled,
		&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	plan.Status = models.PlanStatus(status)
	if err := json.Unmarshal([]byte(settled), &plan.Settled); err != nil {
		return nil, fmt.Errorf("failed to decode settled installments: %w", err)
	}
	return &plan, nil
}

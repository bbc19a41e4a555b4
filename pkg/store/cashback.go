package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
)

// CreateCashback inserts a cashback record.
func (s *SQLStore) CreateCashback(ctx context.Context, record *models.CashbackRecord) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO cashback_records (id, account_id, purchase_amount, rate_percent, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(), record.AccountID.String(), record.PurchaseAmount, record.RatePercent, record.Amount,
		record.Description, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cashback record: %w", err)
	}
	return nil
}

// GetCashbackForAccount retrieves the cashback earned on an account, oldest first.
func (s *SQLStore) GetCashbackForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.CashbackRecord, error) {
	rows, err := s.query(ctx,
		`SELECT id, account_id, purchase_amount, rate_percent, amount, description, created_at
		FROM cashback_records WHERE account_id = ? ORDER BY created_at ASC`, accountID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get cashback for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var records []*models.CashbackRecord
	for rows.Next() {
		var r models.CashbackRecord
		if err := rows.Scan(&r.ID, &r.AccountID, &r.PurchaseAmount, &r.RatePercent, &r.Amount, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cashback row: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for cashback: %w", err)
	}
	return records, nil
}

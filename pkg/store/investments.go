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

const investmentColumns = `id, name, currency, kind, holding, created_at`

// CreateInvestment inserts an investment; the holding is stored as JSON next
// to its kind.
func (s *SQLStore) CreateInvestment(ctx context.Context, investment *models.Investment) error {
	if investment.Holding == nil {
		return fmt.Errorf("failed to create investment: no holding")
	}
	holding, err := json.Marshal(investment.Holding)
	if err != nil {
		return fmt.Errorf("failed to encode holding: %w", err)
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO investments (`+investmentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		investment.ID.String(), investment.Name, investment.Currency, string(investment.Holding.Kind()),
		string(holding), investment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetInvestment retrieves an investment by its ID.
func (s *SQLStore) GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	row := s.queryRow(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = ?`, id.String())
	inv, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("investment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return inv, nil
}

// DeleteInvestment removes an investment.
func (s *SQLStore) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	result, err := s.exec(ctx, s.db, `DELETE FROM investments WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	return mustAffect(result, "investment")
}

// GetAllInvestments retrieves all investments, oldest first.
func (s *SQLStore) GetAllInvestments(ctx context.Context) ([]*models.Investment, error) {
	rows, err := s.query(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all investments: %w", err)
	}
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return investments, nil
}

func scanInvestment(row scanner) (*models.Investment, error) {
	var inv models.Investment
	var kind, holding string
	if err := row.Scan(&inv.ID, &inv.Name, &inv.Currency, &kind, &holding, &inv.CreatedAt); err != nil {
		return nil, err
	}
	h, err := models.DecodeHolding(models.InvestmentKind(kind), []byte(holding))
	if err != nil {
		return nil, err
	}
	inv.Holding = h
	return &inv, nil
}

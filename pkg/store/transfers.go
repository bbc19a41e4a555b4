package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
)

const transferColumns = `id, from_type, from_id, to_type, to_id, amount, fee, fee_bearer, debit, credit, status, description, created_at, completed_at`

// CreateTransfer inserts a transfer without touching any account.
func (s *SQLStore) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	return s.insertTransfer(ctx, s.db, transfer)
}

func (s *SQLStore) insertTransfer(ctx context.Context, e execer, t *models.Transfer) error {
	_, err := s.exec(ctx, e,
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), string(t.From.Type), t.From.ID.String(), string(t.To.Type), t.To.ID.String(),
		t.Amount, t.Fee, string(t.FeeBearer), t.Debit, t.Credit, string(t.Status), t.Description, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// GetTransfer retrieves a transfer by its ID.
func (s *SQLStore) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	row := s.queryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = ?`, id.String())
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return t, nil
}

// GetTransfersForAccount retrieves all transfers in or out of an account.
func (s *SQLStore) GetTransfersForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Transfer, error) {
	rows, err := s.query(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE from_id = ? OR to_id = ? ORDER BY created_at ASC`,
		accountID.String(), accountID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var transfers []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for account transfers: %w", err)
	}
	return transfers, nil
}

// ApplyTransfer updates both accounts and records the transfer atomically.
// An existing transfer row (a pending transfer being completed) is updated
// in place.
func (s *SQLStore) ApplyTransfer(ctx context.Context, transfer *models.Transfer, source, destination *models.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.updateAccount(ctx, tx, source); err != nil {
		return fmt.Errorf("failed to debit source: %w", err)
	}
	if err := s.updateAccount(ctx, tx, destination); err != nil {
		return fmt.Errorf("failed to credit destination: %w", err)
	}

	result, err := s.exec(ctx, tx,
		`UPDATE transfers SET debit = ?, credit = ?, status = ?, completed_at = ? WHERE id = ?`,
		transfer.Debit, transfer.Credit, string(transfer.Status), transfer.CompletedAt, transfer.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		if err := s.insertTransfer(ctx, tx, transfer); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanTransfer(row scanner) (*models.Transfer, error) {
	var t models.Transfer
	var fromType, toType, bearer, status string
	var completedAt sql.NullTime
	err := row.Scan(&t.ID, &fromType, &t.From.ID, &toType, &t.To.ID, &t.Amount, &t.Fee, &bearer,
		&t.Debit, &t.Credit, &status, &t.Description, &t.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.From.Type = models.AccountType(fromType)
	t.To.Type = models.AccountType(toType)
	t.FeeBearer = models.FeeBearer(bearer)
	t.Status = models.TransferStatus(status)
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

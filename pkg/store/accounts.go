package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
)

const accountColumns = `id, type, name, balance, daily_limit, daily_used, monthly_limit, monthly_used, usage_date, created_at, updated_at`

// CreateAccount inserts a new account into the database.
func (s *SQLStore) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(), string(account.Type), account.Name, account.Balance, account.DailyLimit, account.DailyUsed,
		account.MonthlyLimit, account.MonthlyUsed, account.UsageDate, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by its ID.
func (s *SQLStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := s.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String())
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// UpdateAccount updates an existing account in the database.
func (s *SQLStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	return s.updateAccount(ctx, s.db, account)
}

func (s *SQLStore) updateAccount(ctx context.Context, e execer, account *models.Account) error {
	result, err := s.exec(ctx, e,
		`UPDATE accounts SET type = ?, name = ?, balance = ?, daily_limit = ?, daily_used = ?, monthly_limit = ?, monthly_used = ?, usage_date = ?, updated_at = ? WHERE id = ?`,
		string(account.Type), account.Name, account.Balance, account.DailyLimit, account.DailyUsed,
		account.MonthlyLimit, account.MonthlyUsed, account.UsageDate, account.UpdatedAt, account.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return mustAffect(result, "account")
}

// DeleteAccount removes an account. Its cashback records go with it; transfers
// are kept as history.
func (s *SQLStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	result, err := s.exec(ctx, s.db, `DELETE FROM accounts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return mustAffect(result, "account")
}

// GetAllAccounts retrieves all accounts ordered by name.
func (s *SQLStore) GetAllAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return accounts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var account models.Account
	var accountType string
	var usageDate sql.NullTime
	err := row.Scan(&account.ID, &accountType, &account.Name, &account.Balance, &account.DailyLimit, &account.DailyUsed,
		&account.MonthlyLimit, &account.MonthlyUsed, &usageDate, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	account.Type = models.AccountType(accountType)
	if usageDate.Valid {
		account.UsageDate = &usageDate.Time
	}
	return &account, nil
}

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Storage defines the interface for database operations on accounts,
// transfers, installment plans, investments, cashback and settings.
type Storage interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GetAllAccounts(ctx context.Context) ([]*models.Account, error)

	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	GetTransfersForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Transfer, error)
	// ApplyTransfer writes the updated source and destination accounts and
	// inserts or updates the transfer row in a single database transaction.
	ApplyTransfer(ctx context.Context, transfer *models.Transfer, source, destination *models.Account) error

	CreatePlan(ctx context.Context, plan *models.InstallmentPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*models.InstallmentPlan, error)
	UpdatePlan(ctx context.Context, plan *models.InstallmentPlan) error
	GetAllPlans(ctx context.Context) ([]*models.InstallmentPlan, error)

	CreateInvestment(ctx context.Context, investment *models.Investment) error
	GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	DeleteInvestment(ctx context.Context, id uuid.UUID) error
	GetAllInvestments(ctx context.Context) ([]*models.Investment, error)

	CreateCashback(ctx context.Context, record *models.CashbackRecord) error
	GetCashbackForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.CashbackRecord, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}

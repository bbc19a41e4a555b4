package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeEWallet    AccountType = "e-wallet"
	AccountTypePrepaid    AccountType = "prepaid-card"
	AccountTypePOSMachine AccountType = "pos-machine-account"
	AccountTypeCashVault  AccountType = "cash-vault"
	AccountTypeCreditCard AccountType = "credit-card"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeEWallet, AccountTypePrepaid,
		AccountTypePOSMachine, AccountTypeCashVault, AccountTypeCreditCard:
		return true
	}
	return false
}

// AccountRef identifies an account across all account kinds.
type AccountRef struct {
	Type AccountType `json:"type"`
	ID   uuid.UUID   `json:"id"`
}

type Account struct {
	ID           uuid.UUID           `json:"id"`
	Type         AccountType         `json:"type"`
	Name         string              `json:"name"`
	Balance      decimal.Decimal     `json:"balance"`              // Available credit for credit cards
	DailyLimit   decimal.NullDecimal `json:"daily_limit"`          // Invalid means no limit
	DailyUsed    decimal.Decimal     `json:"daily_used"`
	MonthlyLimit decimal.NullDecimal `json:"monthly_limit"`        // Invalid means no limit
	MonthlyUsed  decimal.Decimal     `json:"monthly_used"`
	UsageDate    *time.Time          `json:"usage_date,omitempty"` // Day the usage counters were last touched
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Ref returns the AccountRef pointing at a.
func (a *Account) Ref() AccountRef {
	return AccountRef{Type: a.Type, ID: a.ID}
}

// SourceState is the slice of a source account that transfer validation reads.
type SourceState struct {
	Balance      decimal.Decimal
	DailyLimit   decimal.NullDecimal
	DailyUsed    decimal.Decimal
	MonthlyLimit decimal.NullDecimal
	MonthlyUsed  decimal.Decimal
}

// SourceState snapshots the balance and usage counters of a.
func (a *Account) SourceState() SourceState {
	return SourceState{
		Balance:      a.Balance,
		DailyLimit:   a.DailyLimit,
		DailyUsed:    a.DailyUsed,
		MonthlyLimit: a.MonthlyLimit,
		MonthlyUsed:  a.MonthlyUsed,
	}
}

type FeeBearer string

const (
	FeeBearerSender   FeeBearer = "sender"
	FeeBearerReceiver FeeBearer = "receiver"
	FeeBearerNone     FeeBearer = "none"
)

type TransferRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	FeeBearer FeeBearer       `json:"fee_bearer"`
	From      AccountRef      `json:"from"`
	To        AccountRef      `json:"to"`
}

type TransferResult struct {
	DebitFromSource     decimal.Decimal `json:"debit_from_source"`
	CreditToDestination decimal.Decimal `json:"credit_to_destination"`
	FeeRecorded         decimal.Decimal `json:"fee_recorded"`
}

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
)

// Transfer is the persisted ledger entry for a central transfer.
type Transfer struct {
	ID          uuid.UUID       `json:"id"`
	From        AccountRef      `json:"from"`
	To          AccountRef      `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	FeeBearer   FeeBearer       `json:"fee_bearer"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Status      TransferStatus  `json:"status"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Request rebuilds the TransferRequest a transfer was created from.
func (t *Transfer) Request() TransferRequest {
	return TransferRequest{
		Amount:    t.Amount,
		Fee:       t.Fee,
		FeeBearer: t.FeeBearer,
		From:      t.From,
		To:        t.To,
	}
}

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

type InstallmentPlan struct {
	ID                  uuid.UUID            `json:"id"`
	AccountID           uuid.UUID            `json:"account_id"`            // Credit card the purchase was made on
	Description         string               `json:"description"`
	Principal           decimal.Decimal      `json:"principal"`
	TotalMonths         int                  `json:"total_months"`
	InterestRatePercent decimal.Decimal      `json:"interest_rate_percent"` // Simple interest over the whole term
	AdminFee            decimal.Decimal      `json:"admin_fee"`             // Loaded onto the first installment
	StartDate           time.Time            `json:"start_date"`
	PaidMonths          int                  `json:"paid_months"`
	Status              PlanStatus           `json:"status"`
	Settled             []SettledInstallment `json:"settled,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// SettledInstallment freezes the composition of a month at the time it was paid.
type SettledInstallment struct {
	MonthIndex      int             `json:"month_index"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	AdminFeePortion decimal.Decimal `json:"admin_fee_portion"`
	PaidAt          time.Time       `json:"paid_at"`
}

type EntryStatus string

const (
	EntryStatusPaid     EntryStatus = "paid"
	EntryStatusUpcoming EntryStatus = "upcoming"
	EntryStatusOverdue  EntryStatus = "overdue"
)

type PaymentScheduleEntry struct {
	MonthIndex      int             `json:"month_index"`
	DueDate         time.Time       `json:"due_date"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	AdminFeePortion decimal.Decimal `json:"admin_fee_portion"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          EntryStatus     `json:"status"`
}

type AccrualInstrument struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"` // Applied once over the full term
	StartDate         time.Time       `json:"start_date"`
	MaturityDate      time.Time       `json:"maturity_date"`
}

type AccrualResult struct {
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	TotalInterest   decimal.Decimal `json:"total_interest"`
	MonthlyReturn   decimal.Decimal `json:"monthly_return"`
	IsMatured       bool            `json:"is_matured"`
	IsNearMaturity  bool            `json:"is_near_maturity"`
	DaysElapsed     int             `json:"days_elapsed"`
	DaysRemaining   int             `json:"days_remaining"`
	TotalDays       int             `json:"total_days"`
}

type CashbackRecord struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	RatePercent    decimal.Decimal `json:"rate_percent"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}

package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/logging"
	"github.com/mcclellann/fredLedger/pkg/metrics"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/mcclellann/fredLedger/pkg/rates"
	"github.com/mcclellann/fredLedger/pkg/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBaseCurrency is the currency balances and valuations are kept in.
const DefaultBaseCurrency = "IDR"

// Ledger handles the business logic for accounts, transfers, installment
// plans, investments and cashback.
type Ledger struct {
	storage      store.Storage
	clock        Clock
	rates        rates.Provider
	amortizer    Amortizer
	accrual      AccrualCalculator
	baseCurrency string
	metrics      metrics.Collector
	logger       *logging.Logger

	// mu serializes read-validate-apply sequences on balances and plans.
	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the source of "today".
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithRates sets the exchange rate provider used by portfolio valuation.
func WithRates(p rates.Provider) Option {
	return func(l *Ledger) { l.rates = p }
}

// WithRecomputeMode selects how schedules treat already paid months.
func WithRecomputeMode(m RecomputeMode) Option {
	return func(l *Ledger) { l.amortizer.Mode = m }
}

// WithNearMaturityDays sets the near-maturity window in days.
func WithNearMaturityDays(days int) Option {
	return func(l *Ledger) { l.accrual.NearMaturityDays = days }
}

// WithBaseCurrency sets the valuation currency.
func WithBaseCurrency(currency string) Option {
	return func(l *Ledger) { l.baseCurrency = currency }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(l *Ledger) { l.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger creates a new Ledger with a given Storage implementation. Unless
// overridden, the exchange rate is read from the store's settings.
func NewLedger(s store.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage:      s,
		clock:        SystemClock{},
		amortizer:    Amortizer{Mode: RecomputeFull},
		accrual:      AccrualCalculator{NearMaturityDays: DefaultNearMaturityDays},
		baseCurrency: DefaultBaseCurrency,
		metrics:      metrics.NoOpCollector{},
		logger:       logging.L(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rates == nil {
		l.rates = rates.NewSettingsProvider(s)
	}
	l.logger = l.logger.Named("ledger")
	return l
}

// RecomputeMode returns the schedule recompute mode in use.
func (l *Ledger) RecomputeMode() RecomputeMode {
	return l.amortizer.Mode
}

// BaseCurrency returns the valuation currency.
func (l *Ledger) BaseCurrency() string {
	return l.baseCurrency
}

// CreateAccount opens a new account. Limits that are not Valid are unlimited.
func (l *Ledger) CreateAccount(ctx context.Context, accountType models.AccountType, name string, balance decimal.Decimal, dailyLimit, monthlyLimit decimal.NullDecimal) (*models.Account, error) {
	now := l.clock.Now()
	account := &models.Account{
		ID:           uuid.New(),
		Type:         accountType,
		Name:         name,
		Balance:      balance,
		DailyLimit:   dailyLimit,
		MonthlyLimit: monthlyLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := l.storage.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}

	l.logger.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("type", string(account.Type)),
	)
	return account, nil
}

func validateAccount(a *models.Account) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidAccount, a.Type)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if a.Balance.IsNegative() {
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidAmount)
	}
	if a.DailyLimit.Valid && a.DailyLimit.Decimal.IsNegative() {
		return fmt.Errorf("%w: daily limit must not be negative", ErrInvalidAmount)
	}
	if a.MonthlyLimit.Valid && a.MonthlyLimit.Decimal.IsNegative() {
		return fmt.Errorf("%w: monthly limit must not be negative", ErrInvalidAmount)
	}
	return nil
}

// GetAccount retrieves an account by its ID with its usage counters rolled
// over to today.
func (l *Ledger) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := l.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	rollover(account, l.clock.Now())
	return account, nil
}

// GetAllAccounts retrieves all accounts.
func (l *Ledger) GetAllAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := l.storage.GetAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now()
	for _, a := range accounts {
		rollover(a, now)
	}
	return accounts, nil
}

// AccountUpdate holds the user-editable fields of an account. Limits that
// are not Valid are unlimited.
type AccountUpdate struct {
	Type         models.AccountType  `json:"type"`
	Name         string              `json:"name"`
	Balance      decimal.Decimal     `json:"balance"`
	DailyLimit   decimal.NullDecimal `json:"daily_limit"`
	MonthlyLimit decimal.NullDecimal `json:"monthly_limit"`
}

// UpdateAccount replaces the editable fields of an account. Usage counters
// are read under the ledger lock so concurrent transfers are not lost.
func (l *Ledger) UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now()
	rollover(account, now)

	account.Type = update.Type
	account.Name = update.Name
	account.Balance = update.Balance
	account.DailyLimit = update.DailyLimit
	account.MonthlyLimit = update.MonthlyLimit
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	account.UpdatedAt = now
	if err := l.storage.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeleteAccount deletes an account. Its transfers stay as history.
func (l *Ledger) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.storage.DeleteAccount(ctx, id)
}

// rollover resets usage counters that belong to an earlier day or month.
func rollover(a *models.Account, now time.Time) {
	if a.UsageDate == nil {
		return
	}
	last, today := civilDate(*a.UsageDate), civilDate(now)
	if last.Equal(today) {
		return
	}
	a.DailyUsed = decimal.Zero
	if last.Year() != today.Year() || last.Month() != today.Month() {
		a.MonthlyUsed = decimal.Zero
	}
}

// resolve loads the accounts a request refers to. A request may leave the
// account types empty; when given they must match the stored accounts.
func (l *Ledger) resolve(ctx context.Context, req *models.TransferRequest) (src, dst *models.Account, err error) {
	src, err = l.GetAccount(ctx, req.From.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("source account: %w", err)
	}
	if req.From.ID == req.To.ID {
		return src, src, nil
	}
	dst, err = l.GetAccount(ctx, req.To.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("destination account: %w", err)
	}

	for _, pair := range []struct {
		ref     *models.AccountRef
		account *models.Account
	}{{&req.From, src}, {&req.To, dst}} {
		if pair.ref.Type == "" {
			pair.ref.Type = pair.account.Type
		} else if pair.ref.Type != pair.account.Type {
			return nil, nil, fmt.Errorf("%w: account %s is %s, not %s",
				ErrInvalidAccount, pair.account.ID, pair.account.Type, pair.ref.Type)
		}
	}
	return src, dst, nil
}

// QuoteTransfer allocates req against the current account state without
// changing anything.
func (l *Ledger) QuoteTransfer(ctx context.Context, req models.TransferRequest) (models.TransferResult, error) {
	src, _, err := l.resolve(ctx, &req)
	if err != nil {
		return models.TransferResult{}, err
	}
	return Allocate(req, src.SourceState(), ExecuteImmediately)
}

// ExecuteTransfer records a transfer. Completed transfers are checked
// against usage limits and applied to both balances atomically; pending
// transfers are only recorded.
func (l *Ledger) ExecuteTransfer(ctx context.Context, req models.TransferRequest, status models.TransferStatus, description string) (*models.Transfer, error) {
	mode := ExecuteImmediately
	switch status {
	case "", models.TransferStatusCompleted:
		status = models.TransferStatusCompleted
	case models.TransferStatusPending:
		mode = SavePending
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src, dst, err := l.resolve(ctx, &req)
	if err != nil {
		return nil, err
	}
	result, err := Allocate(req, src.SourceState(), mode)
	l.metrics.RecordTransfer(outcome(err), string(req.FeeBearer))
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	transfer := &models.Transfer{
		ID:          uuid.New(),
		From:        req.From,
		To:          req.To,
		Amount:      req.Amount,
		Fee:         req.Fee,
		FeeBearer:   req.FeeBearer,
		Debit:       result.DebitFromSource,
		Credit:      result.CreditToDestination,
		Status:      status,
		Description: description,
		CreatedAt:   now,
	}

	if status == models.TransferStatusPending {
		if err := l.storage.CreateTransfer(ctx, transfer); err != nil {
			return nil, fmt.Errorf("failed to store pending transfer: %w", err)
		}
		l.logger.Info("transfer saved as pending",
			zap.String("transfer_id", transfer.ID.String()),
			zap.String("amount", transfer.Amount.String()),
		)
		return transfer, nil
	}

	transfer.CompletedAt = &now
	if err := l.apply(ctx, transfer, src, dst, result, now); err != nil {
		return nil, err
	}
	return transfer, nil
}

// CompletePendingTransfer re-validates a pending transfer against the
// current balances and limits and applies it.
func (l *Ledger) CompletePendingTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	transfer, err := l.storage.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != models.TransferStatusPending {
		return nil, fmt.Errorf("%w: transfer %s is %s", ErrTransferNotPending, id, transfer.Status)
	}

	req := transfer.Request()
	src, dst, err := l.resolve(ctx, &req)
	if err != nil {
		return nil, err
	}
	result, err := Allocate(req, src.SourceState(), ExecuteImmediately)
	l.metrics.RecordTransfer(outcome(err), string(req.FeeBearer))
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	transfer.Debit = result.DebitFromSource
	transfer.Credit = result.CreditToDestination
	transfer.Status = models.TransferStatusCompleted
	transfer.CompletedAt = &now
	if err := l.apply(ctx, transfer, src, dst, result, now); err != nil {
		return nil, err
	}
	return transfer, nil
}

func (l *Ledger) apply(ctx context.Context, transfer *models.Transfer, src, dst *models.Account, result models.TransferResult, now time.Time) error {
	today := civilDate(now)
	src.Balance = src.Balance.Sub(result.DebitFromSource)
	src.DailyUsed = src.DailyUsed.Add(result.DebitFromSource)
	src.MonthlyUsed = src.MonthlyUsed.Add(result.DebitFromSource)
	src.UsageDate = &today
	src.UpdatedAt = now
	dst.Balance = dst.Balance.Add(result.CreditToDestination)
	dst.UpdatedAt = now

	if err := l.storage.ApplyTransfer(ctx, transfer, src, dst); err != nil {
		return fmt.Errorf("failed to apply transfer: %w", err)
	}

	l.logger.Info("transfer executed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("from", src.ID.String()),
		zap.String("to", dst.ID.String()),
		zap.String("debit", result.DebitFromSource.String()),
		zap.String("credit", result.CreditToDestination.String()),
		zap.String("fee", result.FeeRecorded.String()),
	)
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return Code(err)
}

// GetTransfer retrieves a transfer by its ID.
func (l *Ledger) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	return l.storage.GetTransfer(ctx, id)
}

// GetTransfersForAccount retrieves the transfers an account sent or received.
func (l *Ledger) GetTransfersForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Transfer, error) {
	return l.storage.GetTransfersForAccount(ctx, accountID)
}

// Accrue computes accrual for an instrument as of today.
func (l *Ledger) Accrue(inst models.AccrualInstrument) (models.AccrualResult, error) {
	return l.AccrueAsOf(inst, l.clock.Now())
}

// AccrueAsOf computes accrual for an instrument as of asOf.
func (l *Ledger) AccrueAsOf(inst models.AccrualInstrument, asOf time.Time) (models.AccrualResult, error) {
	result, err := l.accrual.Accrue(inst, asOf)
	if err != nil {
		return models.AccrualResult{}, err
	}
	l.metrics.RecordAccrual(result.IsMatured)
	return result, nil
}

// RecordCashback stores the cashback earned on a purchase made with an account.
func (l *Ledger) RecordCashback(ctx context.Context, accountID uuid.UUID, amount, ratePercent decimal.Decimal, description string) (*models.CashbackRecord, error) {
	cashback, err := CalculateCashback(amount, ratePercent)
	if err != nil {
		return nil, err
	}
	if _, err := l.storage.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	record := &models.CashbackRecord{
		ID:             uuid.New(),
		AccountID:      accountID,
		PurchaseAmount: amount,
		RatePercent:    ratePercent,
		Amount:         cashback,
		Description:    description,
		CreatedAt:      l.clock.Now(),
	}
	if err := l.storage.CreateCashback(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store cashback: %w", err)
	}
	return record, nil
}

// GetCashbackForAccount retrieves the cashback earned with an account.
func (l *Ledger) GetCashbackForAccount(ctx context.Context, accountID uuid.UUID) ([]*models.CashbackRecord, error) {
	return l.storage.GetCashbackForAccount(ctx, accountID)
}

// ExchangeRate returns the rate in effect today.
func (l *Ledger) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	return l.rates.GetRate(ctx, l.clock.Now())
}

// SetExchangeRate writes the rate through the configured provider. Providers
// that cannot store rates return rates.ErrRateReadOnly.
func (l *Ledger) SetExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	setter, ok := l.rates.(rates.Setter)
	if !ok {
		return fmt.Errorf("%w: %T", rates.ErrRateReadOnly, l.rates)
	}
	if err := setter.SetRate(ctx, rate); err != nil {
		return err
	}
	if inv, ok := l.rates.(rates.Invalidator); ok {
		inv.Invalidate()
	}
	l.logger.Info("exchange rate updated", zap.String("rate", rate.String()))
	return nil
}

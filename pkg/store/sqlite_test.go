package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test_store.db")

	s, err := NewSQLiteStore(dbFile)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newAccount(name string, balance int64) *models.Account {
	now := time.Now().UTC()
	return &models.Account{
		ID:        uuid.New(),
		Type:      models.AccountTypeBank,
		Name:      name,
		Balance:   decimal.NewFromInt(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLiteStore_CreateAndGetAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := newAccount("Main bank", 2000)
	account.DailyLimit = decimal.NewNullDecimal(decimal.NewFromInt(500))

	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	fetched, err := s.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}

	if fetched.Name != account.Name {
		t.Errorf("Expected Name %s, got %s", account.Name, fetched.Name)
	}
	if !fetched.Balance.Equal(account.Balance) {
		t.Errorf("Expected Balance %s, got %s", account.Balance, fetched.Balance)
	}
	if !fetched.DailyLimit.Valid || !fetched.DailyLimit.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected DailyLimit 500, got %+v", fetched.DailyLimit)
	}
	if fetched.MonthlyLimit.Valid {
		t.Errorf("Expected no monthly limit, got %s", fetched.MonthlyLimit.Decimal)
	}
	if fetched.UsageDate != nil {
		t.Errorf("Expected nil UsageDate, got %v", fetched.UsageDate)
	}
}

func TestSQLiteStore_KeepsDecimalPrecision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := newAccount("Vault", 0)
	account.Balance = decimal.RequireFromString("1234.5678901234")
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	fetched, err := s.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if !fetched.Balance.Equal(account.Balance) {
		t.Errorf("Expected Balance %s, got %s", account.Balance, fetched.Balance)
	}
}

func TestSQLiteStore_MissingAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetAccount(ctx, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	err = s.UpdateAccount(ctx, newAccount("ghost", 1))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update, got %v", err)
	}

	err = s.DeleteAccount(ctx, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestSQLiteStore_ApplyTransfer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := newAccount("Source", 1000)
	dst := newAccount("Destination", 100)
	s.CreateAccount(ctx, src)
	s.CreateAccount(ctx, dst)

	src.Balance = decimal.NewFromInt(450)
	dst.Balance = decimal.NewFromInt(600)
	now := time.Now().UTC()
	transfer := &models.Transfer{
		ID:          uuid.New(),
		From:        src.Ref(),
		To:          dst.Ref(),
		Amount:      decimal.NewFromInt(500),
		Fee:         decimal.NewFromInt(50),
		FeeBearer:   models.FeeBearerSender,
		Debit:       decimal.NewFromInt(550),
		Credit:      decimal.NewFromInt(500),
		Status:      models.TransferStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}

	if err := s.ApplyTransfer(ctx, transfer, src, dst); err != nil {
		t.Fatalf("Failed to apply transfer: %v", err)
	}

	fetchedSrc, _ := s.GetAccount(ctx, src.ID)
	fetchedDst, _ := s.GetAccount(ctx, dst.ID)
	if !fetchedSrc.Balance.Equal(decimal.NewFromInt(450)) {
		t.Errorf("Expected source balance 450, got %s", fetchedSrc.Balance)
	}
	if !fetchedDst.Balance.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected destination balance 600, got %s", fetchedDst.Balance)
	}

	transfers, err := s.GetTransfersForAccount(ctx, dst.ID)
	if err != nil {
		t.Fatalf("Failed to get transfers: %v", err)
	}
	if len(transfers) != 1 {
		t.Fatalf("Expected 1 transfer, got %d", len(transfers))
	}
	if transfers[0].FeeBearer != models.FeeBearerSender || !transfers[0].Debit.Equal(decimal.NewFromInt(550)) {
		t.Errorf("Unexpected transfer %+v", transfers[0])
	}
	if transfers[0].CompletedAt == nil {
		t.Error("Expected CompletedAt to be set")
	}
}

func TestSQLiteStore_ApplyTransferCompletesPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := newAccount("Source", 1000)
	dst := newAccount("Destination", 0)
	s.CreateAccount(ctx, src)
	s.CreateAccount(ctx, dst)

	transfer := &models.Transfer{
		ID:        uuid.New(),
		From:      src.Ref(),
		To:        dst.Ref(),
		Amount:    decimal.NewFromInt(100),
		Fee:       decimal.Zero,
		FeeBearer: models.FeeBearerNone,
		Debit:     decimal.NewFromInt(100),
		Credit:    decimal.NewFromInt(100),
		Status:    models.TransferStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateTransfer(ctx, transfer); err != nil {
		t.Fatalf("Failed to create transfer: %v", err)
	}

	now := time.Now().UTC()
	transfer.Status = models.TransferStatusCompleted
	transfer.CompletedAt = &now
	src.Balance = decimal.NewFromInt(900)
	dst.Balance = decimal.NewFromInt(100)
	if err := s.ApplyTransfer(ctx, transfer, src, dst); err != nil {
		t.Fatalf("Failed to apply transfer: %v", err)
	}

	transfers, _ := s.GetTransfersForAccount(ctx, src.ID)
	if len(transfers) != 1 {
		t.Fatalf("Expected the pending row to be updated in place, got %d rows", len(transfers))
	}
	if transfers[0].Status != models.TransferStatusCompleted {
		t.Errorf("Expected status completed, got %s", transfers[0].Status)
	}
}

func TestSQLiteStore_ApplyTransferRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := newAccount("Source", 1000)
	s.CreateAccount(ctx, src)
	ghost := newAccount("Never stored", 0)

	src.Balance = decimal.NewFromInt(0)
	transfer := &models.Transfer{
		ID:        uuid.New(),
		From:      src.Ref(),
		To:        ghost.Ref(),
		Amount:    decimal.NewFromInt(1000),
		Fee:       decimal.Zero,
		FeeBearer: models.FeeBearerNone,
		Debit:     decimal.NewFromInt(1000),
		Credit:    decimal.NewFromInt(1000),
		Status:    models.TransferStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ApplyTransfer(ctx, transfer, src, ghost); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	fetched, _ := s.GetAccount(ctx, src.ID)
	if !fetched.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected source balance to be rolled back to 1000, got %s", fetched.Balance)
	}
	if _, err := s.GetTransfer(ctx, transfer.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected no transfer row, got %v", err)
	}
}

func TestSQLiteStore_Plans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	plan := &models.InstallmentPlan{
		ID:                  uuid.New(),
		AccountID:           uuid.New(),
		Description:         "Laptop",
		Principal:           decimal.NewFromInt(12000),
		TotalMonths:         12,
		InterestRatePercent: decimal.NewFromInt(18),
		AdminFee:            decimal.NewFromInt(120),
		StartDate:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:              models.PlanStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.CreatePlan(ctx, plan); err != nil {
		t.Fatalf("Failed to create plan: %v", err)
	}

	amendedStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	plan.StartDate = amendedStart
	plan.PaidMonths = 1
	plan.Settled = []models.SettledInstallment{{
		MonthIndex:      1,
		BaseAmount:      decimal.NewFromInt(1180),
		AdminFeePortion: decimal.NewFromInt(120),
		PaidAt:          now,
	}}
	if err := s.UpdatePlan(ctx, plan); err != nil {
		t.Fatalf("Failed to update plan: %v", err)
	}

	fetched, err := s.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("Failed to get plan: %v", err)
	}
	if fetched.PaidMonths != 1 {
		t.Errorf("Expected PaidMonths 1, got %d", fetched.PaidMonths)
	}
	if !fetched.StartDate.Equal(amendedStart) {
		t.Errorf("Expected start date %s, got %s", amendedStart, fetched.StartDate)
	}
	if len(fetched.Settled) != 1 || !fetched.Settled[0].AdminFeePortion.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected one settled month carrying the admin fee, got %+v", fetched.Settled)
	}
	if !fetched.InterestRatePercent.Equal(decimal.NewFromInt(18)) {
		t.Errorf("Expected rate 18, got %s", fetched.InterestRatePercent)
	}

	plans, err := s.GetAllPlans(ctx)
	if err != nil || len(plans) != 1 {
		t.Errorf("Expected 1 plan, got %d (err %v)", len(plans), err)
	}
}

func TestSQLiteStore_Investments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inv := &models.Investment{
		ID:       uuid.New(),
		Name:     "Gold bar",
		Currency: "USD",
		Holding: models.PreciousMetal{
			Metal:                "gold-24k",
			Grams:                decimal.NewFromInt(10),
			PurchasePricePerGram: decimal.NewFromInt(60),
			CurrentPricePerGram:  decimal.NewFromInt(75),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateInvestment(ctx, inv); err != nil {
		t.Fatalf("Failed to create investment: %v", err)
	}

	fetched, err := s.GetInvestment(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Failed to get investment: %v", err)
	}
	metal, ok := fetched.Holding.(models.PreciousMetal)
	if !ok {
		t.Fatalf("Expected PreciousMetal holding, got %T", fetched.Holding)
	}
	if !metal.Grams.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10 grams, got %s", metal.Grams)
	}

	if err := s.DeleteInvestment(ctx, inv.ID); err != nil {
		t.Fatalf("Failed to delete investment: %v", err)
	}
	if _, err := s.GetInvestment(ctx, inv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStore_CashbackAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	card := newAccount("Card", 5000)
	card.Type = models.AccountTypeCreditCard
	s.CreateAccount(ctx, card)

	record := &models.CashbackRecord{
		ID:             uuid.New(),
		AccountID:      card.ID,
		PurchaseAmount: decimal.NewFromInt(200),
		RatePercent:    decimal.NewFromInt(5),
		Amount:         decimal.NewFromInt(10),
		Description:    "groceries",
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.CreateCashback(ctx, record); err != nil {
		t.Fatalf("Failed to create cashback: %v", err)
	}
	records, err := s.GetCashbackForAccount(ctx, card.ID)
	if err != nil || len(records) != 1 {
		t.Fatalf("Expected 1 cashback record, got %d (err %v)", len(records), err)
	}

	// Deleting the card cascades to its cashback
	if err := s.DeleteAccount(ctx, card.ID); err != nil {
		t.Fatalf("Failed to delete account: %v", err)
	}
	records, _ = s.GetCashbackForAccount(ctx, card.ID)
	if len(records) != 0 {
		t.Errorf("Expected cashback to be deleted with the account, got %d", len(records))
	}

	if _, err := s.GetSetting(ctx, "exchange_rate"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unset setting, got %v", err)
	}
	s.SetSetting(ctx, "exchange_rate", "48.5")
	s.SetSetting(ctx, "exchange_rate", "49.1")
	value, err := s.GetSetting(ctx, "exchange_rate")
	if err != nil || value != "49.1" {
		t.Errorf("Expected 49.1, got %q (err %v)", value, err)
	}
}

func TestSQLiteStore_ReopenMigratesIdempotently(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "reopen.db")
	defer os.Remove(dbFile)

	for i := 0; i < 2; i++ {
		s, err := NewSQLiteStore(dbFile)
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", ""); err == nil {
		t.Error("Expected error for unknown driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: dialectPostgres}
	got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?")
	if got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Errorf("Unexpected rebind result %q", got)
	}

	lite := &SQLStore{dialect: dialectSQLite}
	if q := "SELECT ?"; lite.rebind(q) != q {
		t.Error("SQLite queries must be left untouched")
	}
}

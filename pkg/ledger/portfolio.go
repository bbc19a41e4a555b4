package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaturityNotice flags a certificate that has matured or is about to.
type MaturityNotice struct {
	InvestmentID  uuid.UUID `json:"investment_id"`
	Name          string    `json:"name"`
	IsMatured     bool      `json:"is_matured"`
	DaysRemaining int       `json:"days_remaining"`
}

// CreateInvestment records a holding priced in currency. An empty currency
// means the base currency.
func (l *Ledger) CreateInvestment(ctx context.Context, name, currency string, holding models.Holding) (*models.Investment, error) {
	if err := ValidateHolding(holding); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = l.baseCurrency
	}

	investment := &models.Investment{
		ID:        uuid.New(),
		Name:      name,
		Currency:  strings.ToUpper(currency),
		Holding:   holding,
		CreatedAt: l.clock.Now(),
	}
	if err := l.storage.CreateInvestment(ctx, investment); err != nil {
		return nil, fmt.Errorf("failed to store investment: %w", err)
	}
	return investment, nil
}

// GetInvestment retrieves an investment by its ID.
func (l *Ledger) GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	return l.storage.GetInvestment(ctx, id)
}

// GetAllInvestments retrieves all investments.
func (l *Ledger) GetAllInvestments(ctx context.Context) ([]*models.Investment, error) {
	return l.storage.GetAllInvestments(ctx)
}

// DeleteInvestment deletes an investment.
func (l *Ledger) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	return l.storage.DeleteInvestment(ctx, id)
}

// ValuePortfolio values every investment as of today in the base currency.
// Holdings in another currency are converted with the injected rate
// provider, which is asked at most once per valuation.
func (l *Ledger) ValuePortfolio(ctx context.Context) (*models.PortfolioValuation, error) {
	investments, err := l.storage.GetAllInvestments(ctx)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	valuation := &models.PortfolioValuation{
		BaseCurrency: l.baseCurrency,
		AsOf:         now,
		Holdings:     make([]models.HoldingValuation, 0, len(investments)),
		CostBasis:    decimal.Zero,
		MarketValue:  decimal.Zero,
		Gain:         decimal.Zero,
	}

	var foreignRate *decimal.Decimal
	for _, inv := range investments {
		cost, value, err := ValueHolding(inv.Holding, now)
		if err != nil {
			return nil, fmt.Errorf("investment %s: %w", inv.ID, err)
		}

		rate := decimal.NewFromInt(1)
		if !strings.EqualFold(inv.Currency, l.baseCurrency) {
			if foreignRate == nil {
				r, err := l.rates.GetRate(ctx, now)
				if err != nil {
					return nil, fmt.Errorf("failed to convert %s: %w", inv.Currency, err)
				}
				foreignRate = &r
			}
			rate = *foreignRate
		}

		cost, value = cost.Mul(rate), value.Mul(rate)
		valuation.Holdings = append(valuation.Holdings, models.HoldingValuation{
			InvestmentID: inv.ID,
			Name:         inv.Name,
			Kind:         inv.Holding.Kind(),
			Currency:     inv.Currency,
			Rate:         rate,
			CostBasis:    cost,
			MarketValue:  value,
			Gain:         value.Sub(cost),
		})
		valuation.CostBasis = valuation.CostBasis.Add(cost)
		valuation.MarketValue = valuation.MarketValue.Add(value)
	}
	valuation.Gain = valuation.MarketValue.Sub(valuation.CostBasis)

	return valuation, nil
}

// SweepMaturities reports the certificates that have matured or fall inside
// the near-maturity window.
func (l *Ledger) SweepMaturities(ctx context.Context) ([]MaturityNotice, error) {
	investments, err := l.storage.GetAllInvestments(ctx)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	var notices []MaturityNotice
	for _, inv := range investments {
		cert, ok := inv.Holding.(models.Certificate)
		if !ok {
			continue
		}
		result, err := l.AccrueAsOf(cert.AccrualInstrument, now)
		if err != nil {
			l.logger.Warn("skipping certificate with invalid terms",
				zap.String("investment_id", inv.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !result.IsMatured && !result.IsNearMaturity {
			continue
		}

		notice := MaturityNotice{
			InvestmentID:  inv.ID,
			Name:          inv.Name,
			IsMatured:     result.IsMatured,
			DaysRemaining: result.DaysRemaining,
		}
		notices = append(notices, notice)
		l.logger.Info("certificate maturity",
			zap.String("investment_id", inv.ID.String()),
			zap.String("name", inv.Name),
			zap.Bool("matured", result.IsMatured),
			zap.Int("days_remaining", result.DaysRemaining),
		)
	}
	return notices, nil
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvestmentKind string

const (
	InvestmentKindPreciousMetal  InvestmentKind = "precious-metal"
	InvestmentKindCryptocurrency InvestmentKind = "cryptocurrency"
	InvestmentKindCertificate    InvestmentKind = "certificate"
	InvestmentKindStock          InvestmentKind = "stock"
)

// Holding is one of PreciousMetal, Cryptocurrency, Certificate or Stock.
type Holding interface {
	Kind() InvestmentKind
	holding()
}

type PreciousMetal struct {
	Metal                string          `json:"metal"` // e.g. "gold-21k"
	Grams                decimal.Decimal `json:"grams"`
	PurchasePricePerGram decimal.Decimal `json:"purchase_price_per_gram"`
	CurrentPricePerGram  decimal.Decimal `json:"current_price_per_gram"`
}

type Cryptocurrency struct {
	Symbol        string          `json:"symbol"`
	Units         decimal.Decimal `json:"units"`
	PurchasePrice decimal.Decimal `json:"purchase_price"` // Per unit
	CurrentPrice  decimal.Decimal `json:"current_price"`  // Per unit
}

type Certificate struct {
	AccrualInstrument
}

type Stock struct {
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PurchasePrice decimal.Decimal `json:"purchase_price"` // Per share
	CurrentPrice  decimal.Decimal `json:"current_price"`  // Per share
}

func (PreciousMetal) Kind() InvestmentKind  { return InvestmentKindPreciousMetal }
func (Cryptocurrency) Kind() InvestmentKind { return InvestmentKindCryptocurrency }
func (Certificate) Kind() InvestmentKind    { return InvestmentKindCertificate }
func (Stock) Kind() InvestmentKind          { return InvestmentKindStock }

func (PreciousMetal) holding()  {}
func (Cryptocurrency) holding() {}
func (Certificate) holding()    {}
func (Stock) holding()          {}

type Investment struct {
	ID        uuid.UUID
	Name      string
	Currency  string // ISO code the holding is priced in
	Holding   Holding
	CreatedAt time.Time
}

type investmentJSON struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Kind      InvestmentKind  `json:"kind"`
	Holding   json.RawMessage `json:"holding"`
	CreatedAt time.Time       `json:"created_at"`
}

func (i Investment) MarshalJSON() ([]byte, error) {
	if i.Holding == nil {
		return nil, fmt.Errorf("investment %s has no holding", i.ID)
	}
	raw, err := json.Marshal(i.Holding)
	if err != nil {
		return nil, err
	}
	return json.Marshal(investmentJSON{
		ID:        i.ID,
		Name:      i.Name,
		Currency:  i.Currency,
		Kind:      i.Holding.Kind(),
		Holding:   raw,
		CreatedAt: i.CreatedAt,
	})
}

func (i *Investment) UnmarshalJSON(data []byte) error {
	var v investmentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	h, err := DecodeHolding(v.Kind, v.Holding)
	if err != nil {
		return err
	}
	i.ID = v.ID
	i.Name = v.Name
	i.Currency = v.Currency
	i.Holding = h
	i.CreatedAt = v.CreatedAt
	return nil
}

// DecodeHolding decodes the JSON payload of a holding of the given kind.
func DecodeHolding(kind InvestmentKind, raw []byte) (Holding, error) {
	switch kind {
	case InvestmentKindPreciousMetal:
		var h PreciousMetal
		err := json.Unmarshal(raw, &h)
		return h, err
	case InvestmentKindCryptocurrency:
		var h Cryptocurrency
		err := json.Unmarshal(raw, &h)
		return h, err
	case InvestmentKindCertificate:
		var h Certificate
		err := json.Unmarshal(raw, &h)
		return h, err
	case InvestmentKindStock:
		var h Stock
		err := json.Unmarshal(raw, &h)
		return h, err
	default:
		return nil, fmt.Errorf("unknown investment kind %q", kind)
	}
}

// HoldingValuation is the valuation of one investment in the base currency.
type HoldingValuation struct {
	InvestmentID uuid.UUID       `json:"investment_id"`
	Name         string          `json:"name"`
	Kind         InvestmentKind  `json:"kind"`
	Currency     string          `json:"currency"`
	Rate         decimal.Decimal `json:"rate"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Gain         decimal.Decimal `json:"gain"`
}

type PortfolioValuation struct {
	BaseCurrency string             `json:"base_currency"`
	AsOf         time.Time          `json:"as_of"`
	Holdings     []HoldingValuation `json:"holdings"`
	CostBasis    decimal.Decimal    `json:"cost_basis"`
	MarketValue  decimal.Decimal    `json:"market_value"`
	Gain         decimal.Decimal    `json:"gain"`
}

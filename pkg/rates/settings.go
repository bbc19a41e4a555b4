package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SettingKey is the settings entry holding the current exchange rate.
const SettingKey = "exchange_rate"

// SettingStore is the slice of persistent storage the settings provider needs.
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SettingsProvider reads a single, date-independent rate from the settings
// table.
type SettingsProvider struct {
	store SettingStore
	key   string
}

var _ Setter = (*SettingsProvider)(nil)

// NewSettingsProvider creates a provider backed by the SettingKey entry.
func NewSettingsProvider(store SettingStore) *SettingsProvider {
	return &SettingsProvider{store: store, key: SettingKey}
}

func (p *SettingsProvider) GetRate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	value, err := p.store.GetSetting(ctx, p.key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: setting %q: %v", ErrRateUnavailable, p.key, err)
	}
	return ParseRate(value)
}

// SetRate validates and stores a new rate.
func (p *SettingsProvider) SetRate(ctx context.Context, rate decimal.Decimal) error {
	if err := Validate(rate); err != nil {
		return err
	}
	if err := p.store.SetSetting(ctx, p.key, rate.String()); err != nil {
		return fmt.Errorf("failed to store exchange rate: %w", err)
	}
	return nil
}

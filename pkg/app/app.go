// Package app wires configuration into a ready Ledger: store, rate provider,
// logger and metrics.
package app

import (
	"context"
	"fmt"

	"github.com/mcclellann/fredLedger/pkg/config"
	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/logging"
	"github.com/mcclellann/fredLedger/pkg/metrics"
	"github.com/mcclellann/fredLedger/pkg/rates"
	"github.com/mcclellann/fredLedger/pkg/store"
	"go.uber.org/zap"
)

// App owns the long-lived resources behind a Ledger.
type App struct {
	Ledger  *ledger.Ledger
	Storage store.Storage

	closers []func()
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.LogConfig) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	if cfg.Format != "" {
		lc.Format = cfg.Format
	}
	return logging.NewLogger(lc)
}

// New opens the store and rate provider and builds the Ledger.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger, collector metrics.Collector) (*App, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	mode, err := ledger.ParseRecomputeMode(cfg.Ledger.InstallmentRecompute)
	if err != nil {
		return nil, err
	}

	storage, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	a := &App{Storage: storage}
	a.closers = append(a.closers, func() {
		if err := storage.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	})

	provider, err := a.rateProvider(cfg.Rates, logger, collector)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Ledger = ledger.NewLedger(storage,
		ledger.WithRates(provider),
		ledger.WithRecomputeMode(mode),
		ledger.WithNearMaturityDays(cfg.Ledger.NearMaturityDays),
		ledger.WithBaseCurrency(cfg.Ledger.BaseCurrency),
		ledger.WithMetrics(collector),
		ledger.WithLogger(logger),
	)

	logger.Info("ledger ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("rates", cfg.Rates.Source),
		zap.String("installment_recompute", mode.String()),
	)
	return a, nil
}

func (a *App) rateProvider(cfg config.RatesConfig, logger *logging.Logger, collector metrics.Collector) (rates.Provider, error) {
	switch cfg.Source {
	case "static":
		rate, err := rates.ParseRate(cfg.StaticRate)
		if err != nil {
			return nil, err
		}
		return rates.NewStatic(rate)
	case "settings", "":
		return rates.NewCached(rates.NewSettingsProvider(a.Storage), "settings", cfg.CacheTTL, collector), nil
	case "redis":
		rc := rates.DefaultRedisConfig()
		rc.Addr = cfg.Redis.Addr
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		if cfg.Redis.KeyPrefix != "" {
			rc.KeyPrefix = cfg.Redis.KeyPrefix
		}
		redis, err := rates.NewRedisProvider(rc, logger, collector)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redis.Close)
		return rates.NewCached(redis, "redis", cfg.CacheTTL, collector), nil
	default:
		return nil, fmt.Errorf("unknown rates source %q", cfg.Source)
	}
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

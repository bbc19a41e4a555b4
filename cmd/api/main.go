package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcclellann/fredLedger/pkg/app"
	"github.com/mcclellann/fredLedger/pkg/config"
	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/logging"
	promcollector "github.com/mcclellann/fredLedger/pkg/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("FREDLEDGER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logging.SetGlobal(logger)

	err = run(cfg, logger)
	if err != nil {
		logger.Error("Server failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves the API until a signal arrives. Everything it opens is closed
// before it returns.
func run(cfg *config.Config, logger *logging.Logger) error {
	registry := prometheus.NewRegistry()
	collector := promcollector.NewPrometheusCollector("fredledger")
	if err := collector.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, collector)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	defer a.Close()

	server := NewServer(a.Ledger, a.Storage, logger, promcollector.Handler(registry))

	// Start a goroutine for the maturity sweep
	go sweep(ctx, a.Ledger, cfg.Server.SweepInterval, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Server starting", zap.String("address", cfg.Server.Address))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func sweep(ctx context.Context, l *ledger.Ledger, interval time.Duration, logger *logging.Logger) {
	if interval <= 0 {
		return
	}
	logger = logger.With(zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			notices, err := l.SweepMaturities(ctx)
			if err != nil {
				logger.Error("Maturity sweep failed", zap.Error(err))
				continue
			}
			logger.Info("Maturity sweep complete", zap.Int("notices", len(notices)))
		}
	}
}

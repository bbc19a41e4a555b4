package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcclellann/fredLedger/pkg/logging"
	"github.com/mcclellann/fredLedger/pkg/metrics"

	"github.com/redis/rueidis"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// LatestKey is the key suffix read when no rate is stored for a date.
const LatestKey = "latest"

// RedisConfig configures the Redis rate provider.
type RedisConfig struct {
	Name     string
	Addr     string
	Username string
	Password string
	// DB is the Redis database number (0-15).
	DB int
	// KeyPrefix is prepended to "2006-01-02" dates and to LatestKey.
	KeyPrefix    string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Breaker      BreakerConfig
}

// BreakerConfig configures the circuit breaker around Redis lookups.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultRedisConfig returns a configuration for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Name:         "redis",
		Addr:         "localhost:6379",
		KeyPrefix:    "fx:",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            60 * time.Second,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
	}
}

// RedisProvider reads rates published to Redis by an external feed.
type RedisProvider struct {
	client  rueidis.Client
	cb      *gobreaker.CircuitBreaker
	config  RedisConfig
	logger  *logging.Logger
	metrics metrics.Collector
}

var _ Setter = (*RedisProvider)(nil)

// NewRedisProvider connects to Redis and pings it.
func NewRedisProvider(config RedisConfig, logger *logging.Logger, collector metrics.Collector) (*RedisProvider, error) {
	if config.Name == "" {
		config.Name = "redis"
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("redis: no address configured")
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{config.Addr},
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	p := &RedisProvider{
		client:  client,
		config:  config,
		logger:  logger.Named("rates"),
		metrics: collector,
	}
	p.cb = gobreaker.NewCircuitBreaker(p.breakerSettings())
	return p, nil
}

func (p *RedisProvider) breakerSettings() gobreaker.Settings {
	bc := p.config.Breaker
	return gobreaker.Settings{
		Name:        p.config.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			threshold := bc.ConsecutiveFailures
			if threshold == 0 {
				threshold = 5
			}
			return counts.ConsecutiveFailures >= threshold
		},
		// A missing or malformed rate is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRateUnavailable) || errors.Is(err, ErrInvalidRate)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			p.logger.Warn("circuit breaker state changed",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			p.metrics.RecordCircuitState(name, circuitState(to))
		},
	}
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	default:
		return metrics.CircuitClosed
	}
}

// GetRate reads <prefix><yyyy-mm-dd>, falling back to <prefix>latest.
func (p *RedisProvider) GetRate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.lookup(ctx, date)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.logger.Warn("circuit breaker open - rate lookup rejected",
				zap.Time("date", date),
			)
			return decimal.Zero, fmt.Errorf("%w: %s circuit open", ErrRateUnavailable, p.config.Name)
		}
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

func (p *RedisProvider) lookup(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	keys := []string{
		p.config.KeyPrefix + date.Format("2006-01-02"),
		p.config.KeyPrefix + LatestKey,
	}
	for _, key := range keys {
		value, err := p.client.Do(ctx, p.client.B().Get().Key(key).Build()).ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return decimal.Zero, fmt.Errorf("redis get %s: %w", key, err)
		}
		return ParseRate(value)
	}
	return decimal.Zero, fmt.Errorf("%w: no rate for %s", ErrRateUnavailable, date.Format("2006-01-02"))
}

// Publish stores a rate for a date, or the latest rate when date is zero.
func (p *RedisProvider) Publish(ctx context.Context, date time.Time, rate decimal.Decimal) error {
	if err := Validate(rate); err != nil {
		return err
	}
	key := p.config.KeyPrefix + LatestKey
	if !date.IsZero() {
		key = p.config.KeyPrefix + date.Format("2006-01-02")
	}
	if err := p.client.Do(ctx, p.client.B().Set().Key(key).Value(rate.String()).Build()).Error(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetRate publishes rate as the latest rate. Rates published for a specific
// date still take precedence on that date.
func (p *RedisProvider) SetRate(ctx context.Context, rate decimal.Decimal) error {
	return p.Publish(ctx, time.Time{}, rate)
}

// Close closes the Redis client.
func (p *RedisProvider) Close() {
	p.client.Close()
}

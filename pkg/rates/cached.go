package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcclellann/fredLedger/pkg/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	rate    decimal.Decimal
	expires time.Time
}

// Cached memoizes another provider's rates per calendar date. Concurrent
// misses for the same date share one upstream lookup.
type Cached struct {
	next    Provider
	source  string
	ttl     time.Duration
	metrics metrics.Collector
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	sf      singleflight.Group
}

var (
	_ Invalidator = (*Cached)(nil)
	_ Setter      = (*Cached)(nil)
)

// NewCached wraps next. A ttl of zero disables memoization but still
// collapses concurrent lookups.
func NewCached(next Provider, source string, ttl time.Duration, collector metrics.Collector) *Cached {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Cached{
		next:    next,
		source:  source,
		ttl:     ttl,
		metrics: collector,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cached) GetRate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	key := date.Format("2006-01-02")

	if rate, ok := c.get(key); ok {
		return rate, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		start := c.now()
		rate, err := c.next.GetRate(ctx, date)
		c.metrics.RecordRateLookup(c.source, err == nil, c.now().Sub(start))
		if err != nil {
			return nil, err
		}
		c.put(key, rate)
		return rate, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

// SetRate writes through to the wrapped provider and drops every memoized
// rate. It returns ErrRateReadOnly when the wrapped provider cannot store
// rates.
func (c *Cached) SetRate(ctx context.Context, rate decimal.Decimal) error {
	setter, ok := c.next.(Setter)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRateReadOnly, c.source)
	}
	if err := setter.SetRate(ctx, rate); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops every memoized rate.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *Cached) get(key string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return decimal.Zero, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return decimal.Zero, false
	}
	return e.rate, true
}

func (c *Cached) put(key string, rate decimal.Decimal) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{rate: rate, expires: c.now().Add(c.ttl)}
}

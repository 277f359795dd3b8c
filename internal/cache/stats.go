package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/metrics"
)

// DefaultStatsTTL bounds how long company statistics are served without a refresh.
const DefaultStatsTTL = 5 * time.Minute

// CompanyStatistics is the aggregate snapshot served by the statistics cache.
type CompanyStatistics struct {
	TotalActive  int64            `json:"total_active"`
	TotalPassive int64            `json:"total_passive"`
	ByIndustry   map[string]int64 `json:"by_industry"`
	NewThisMonth int64            `json:"new_this_month"`
	LastUpdated  time.Time        `json:"last_updated"`
}

// StatsFetch loads fresh statistics from the database.
type StatsFetch func(ctx context.Context) (CompanyStatistics, error)

// StatsCache holds a single statistics snapshot with lazy TTL expiry.
//
// The refreshing flag is a cooperative advisory lock: it never blocks a
// caller, it only lets Refresh short-circuit instead of issuing a duplicate
// upstream fetch. Check-and-set happens under the cache mutex so two
// concurrent refreshes cannot both win the flag. There is no waiter queue: a
// caller arriving during an in-flight refresh gets whatever was cached before
// the refresh began, possibly nothing. Stale data over blocked requests.
type StatsCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	value      *CompanyStatistics
	refreshing bool
	log        *zap.Logger
}

// StatsCacheOption customises a StatsCache.
type StatsCacheOption func(*StatsCache)

// WithStatsClock overrides the time source, used by TTL tests.
func WithStatsClock(now func() time.Time) StatsCacheOption {
	return func(c *StatsCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewStatsCache constructs an empty statistics cache. Pass ttl <= 0 for the default.
func NewStatsCache(ttl time.Duration, opts ...StatsCacheOption) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	c := &StatsCache{
		ttl: ttl,
		now: time.Now,
		log: logger.WithModule("stats-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot when present and younger than the TTL.
// Staleness is checked lazily here; nothing expires in the background.
func (c *StatsCache) Get() (CompanyStatistics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value == nil {
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
		return CompanyStatistics{}, false
	}

	if c.now().Sub(c.value.LastUpdated) >= c.ttl {
		metrics.StatsCacheLookups.WithLabelValues("stale").Inc()
		return CompanyStatistics{}, false
	}

	metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
	return *c.value, true
}

// Set replaces the cached snapshot wholesale, stamping it with the current
// time, and releases the refreshing flag.
func (c *StatsCache) Set(stats CompanyStatistics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats.LastUpdated = c.now()
	c.value = &stats
	c.refreshing = false
}

// Clear drops the cached snapshot and resets the refreshing flag. Idempotent.
func (c *StatsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = nil
	c.refreshing = false
}

// IsRefreshing reports whether a refresh is currently marked in-flight.
func (c *StatsCache) IsRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// MarkRefreshing attempts to claim the refresh slot, reporting whether the
// caller won it.
func (c *StatsCache) MarkRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		return false
	}
	c.refreshing = true
	return true
}

// Refresh fetches fresh statistics unless a refresh is already in flight, in
// which case it returns the current cached value without an upstream call.
// Fetch failures are swallowed: the caller sees "no data", never an error.
func (c *StatsCache) Refresh(ctx context.Context, fetch StatsFetch) (CompanyStatistics, bool) {
	if fetch == nil {
		return c.Get()
	}

	if !c.MarkRefreshing() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.value == nil {
			return CompanyStatistics{}, false
		}
		return *c.value, true
	}

	stats, err := fetch(ctx)
	if err != nil {
		c.log.Warn("statistics refresh failed", zap.Error(err))
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
		return CompanyStatistics{}, false
	}

	c.Set(stats)
	return stats, true
}

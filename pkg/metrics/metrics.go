package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finbooks_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StatsCacheLookups counts statistics-cache reads by outcome (hit|miss|stale).
	StatsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finbooks_stats_cache_lookups_total",
			Help: "Statistics cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CacheInvalidations counts invalidation dispatches by tag and result (ok|error).
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finbooks_cache_invalidations_total",
			Help: "Cache invalidation dispatches",
		},
		[]string{"tag", "result"},
	)

	// ChainImports counts imported blockchain transactions by result (imported|skipped|failed).
	ChainImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finbooks_chain_imports_total",
			Help: "Blockchain transaction import outcomes",
		},
		[]string{"result"},
	)

	// RateRefreshes counts currency-rate refresh attempts by result (success|failure).
	RateRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finbooks_rate_refreshes_total",
			Help: "Currency rate refresh attempts",
		},
		[]string{"result"},
	)
)

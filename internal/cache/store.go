package cache

import (
	"context"
	"time"
)

// Store is the byte-value cache behind the invalidation dispatcher and the
// rate-limit counters. Two implementations exist: an in-process map
// (MemoryStore) and a table-backed one (DatabaseStore) for deployments
// where cached state must outlive a restart.
type Store interface {
	// Get returns the value for key, reporting false when the key is
	// absent or its TTL has lapsed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key; a zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the named keys, ignoring ones that do not exist.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key under prefix and reports the count.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)

	// IncrementWithTTL bumps a counter, starting a fresh window when the
	// previous one expired, and returns the new count plus time remaining.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

// MemoryStore is an in-process Store implementation with lazy TTL expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the time source, used by TTL tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	if now != nil {
		s.now = now
	}
	return s
}

// IncrementWithTTL increments a counter key, starting the window on first increment.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.IsZero() && entry.expiresAt.Before(now) {
		entry = &memoryEntry{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}

	entry.count++
	return entry.count, entry.expiresAt.Sub(now), nil
}

// Set stores a value with optional expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl != 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// Get retrieves a value by key, expiring lazily.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Delete removes the supplied keys, ignoring missing ones.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// DeletePrefix removes every key under prefix and reports the removed count.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := s.now()
	for key, entry := range s.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		delete(s.entries, key)
		// Expired entries were already gone from the caller's perspective.
		if entry.expiresAt.IsZero() || entry.expiresAt.After(now) {
			removed++
		}
	}
	return removed, nil
}

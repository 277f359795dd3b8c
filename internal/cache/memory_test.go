package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreDeletePrefixCountsLiveEntriesOnly(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company:a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "company:b", []byte("2"), time.Second))
	require.NoError(t, store.Set(ctx, "other:c", []byte("3"), time.Minute))

	now = now.Add(30 * time.Second) // company:b has expired

	removed, err := store.DeletePrefix(ctx, "company:")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, ok, err := store.Get(ctx, "other:c")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreIncrementWithTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	count, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, remaining, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Greater(t, remaining, time.Duration(0))
}

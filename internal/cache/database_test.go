package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/database/testutil"
)

func mustDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewDatabaseStore(db)
	require.NotNil(t, store)
	return store
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company:c1", []byte("v1"), time.Minute))

	value, found, err := store.Get(ctx, "company:c1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), value)

	// Set on an existing key overwrites.
	require.NoError(t, store.Set(ctx, "company:c1", []byte("v2"), time.Minute))
	value, found, err = store.Get(ctx, "company:c1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), value)

	require.NoError(t, store.Delete(ctx, "company:c1"))
	_, found, err = store.Get(ctx, "company:c1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreExpiredEntriesAreMisses(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company:old", []byte("stale"), -time.Second))

	_, found, err := store.Get(ctx, "company:old")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreZeroTTLNeverExpires(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company:pinned", []byte("keep"), 0))

	_, found, err := store.Get(ctx, "company:pinned")
	require.NoError(t, err)
	require.True(t, found)
}

func TestDatabaseStoreDeletePrefix(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company:c1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "company:c2", []byte("b"), time.Minute))
	require.NoError(t, store.Set(ctx, "company-list:all", []byte("c"), time.Minute))

	removed, err := store.DeletePrefix(ctx, "company:")
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	_, found, err := store.Get(ctx, "company-list:all")
	require.NoError(t, err)
	require.True(t, found, "other prefixes are untouched")
}

func TestDatabaseStoreDeletePrefixEscapesWildcards(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "search_index:a", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "searchXindex:b", []byte("b"), time.Minute))

	// An underscore in the prefix must match literally, not as a wildcard.
	removed, err := store.DeletePrefix(ctx, "search_")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, found, err := store.Get(ctx, "searchXindex:b")
	require.NoError(t, err)
	require.True(t, found)
}

func TestDatabaseStoreIncrementWithTTL(t *testing.T) {
	store := mustDatabaseStore(t)
	ctx := context.Background()

	first, remaining, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)
	require.Greater(t, remaining, time.Duration(0))

	second, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), second)
}

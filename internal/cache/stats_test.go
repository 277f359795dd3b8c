package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatsCacheGetMissWhenEmpty(t *testing.T) {
	c := NewStatsCache(time.Minute)

	_, ok := c.Get()
	require.False(t, ok)
}

func TestStatsCacheSetThenGet(t *testing.T) {
	c := NewStatsCache(time.Minute)

	c.Set(CompanyStatistics{TotalActive: 7, NewThisMonth: 2})

	got, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, int64(7), got.TotalActive)
	require.Equal(t, int64(2), got.NewThisMonth)
	require.False(t, got.LastUpdated.IsZero())
}

func TestStatsCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewStatsCache(5*time.Minute, WithStatsClock(clock))

	c.Set(CompanyStatistics{TotalActive: 3})

	now = now.Add(4 * time.Minute)
	_, ok := c.Get()
	require.True(t, ok, "value younger than the TTL must be served")

	now = now.Add(time.Minute + time.Second)
	_, ok = c.Get()
	require.False(t, ok, "value older than the TTL must be treated as absent")
}

func TestStatsCacheClear(t *testing.T) {
	c := NewStatsCache(time.Minute)
	c.Set(CompanyStatistics{TotalActive: 1})

	c.Clear()

	_, ok := c.Get()
	require.False(t, ok)
	require.False(t, c.IsRefreshing())

	// Clearing an empty cache is a no-op, not an error.
	c.Clear()
}

func TestStatsCacheRefreshFetchesAndStores(t *testing.T) {
	c := NewStatsCache(time.Minute)

	calls := 0
	got, ok := c.Refresh(context.Background(), func(ctx context.Context) (CompanyStatistics, error) {
		calls++
		return CompanyStatistics{TotalActive: 9}, nil
	})

	require.True(t, ok)
	require.Equal(t, int64(9), got.TotalActive)
	require.Equal(t, 1, calls)
	require.False(t, c.IsRefreshing(), "refresh flag must be released after Set")
}

func TestStatsCacheRefreshShortCircuitsWhileInFlight(t *testing.T) {
	c := NewStatsCache(time.Minute)
	c.Set(CompanyStatistics{TotalActive: 4})

	require.True(t, c.MarkRefreshing())

	got, ok := c.Refresh(context.Background(), func(ctx context.Context) (CompanyStatistics, error) {
		t.Fatal("second refresher must not reach upstream")
		return CompanyStatistics{}, nil
	})

	require.True(t, ok)
	require.Equal(t, int64(4), got.TotalActive, "racing caller gets the pre-refresh value")
}

func TestStatsCacheRefreshInFlightWithNothingCached(t *testing.T) {
	c := NewStatsCache(time.Minute)
	require.True(t, c.MarkRefreshing())

	_, ok := c.Refresh(context.Background(), func(ctx context.Context) (CompanyStatistics, error) {
		t.Fatal("second refresher must not reach upstream")
		return CompanyStatistics{}, nil
	})
	require.False(t, ok)
}

func TestStatsCacheRefreshSwallowsFetchErrors(t *testing.T) {
	c := NewStatsCache(time.Minute)

	_, ok := c.Refresh(context.Background(), func(ctx context.Context) (CompanyStatistics, error) {
		return CompanyStatistics{}, errors.New("db gone")
	})

	require.False(t, ok)
	require.False(t, c.IsRefreshing(), "failed refresh must release the flag")

	// A later refresh can run again.
	got, ok := c.Refresh(context.Background(), func(ctx context.Context) (CompanyStatistics, error) {
		return CompanyStatistics{TotalActive: 2}, nil
	})
	require.True(t, ok)
	require.Equal(t, int64(2), got.TotalActive)
}

func TestStatsCacheMarkRefreshingIsExclusive(t *testing.T) {
	c := NewStatsCache(time.Minute)

	require.True(t, c.MarkRefreshing())
	require.False(t, c.MarkRefreshing(), "only one caller may win the refresh slot")

	c.Set(CompanyStatistics{})
	require.True(t, c.MarkRefreshing(), "Set must release the slot")
}

package rates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/services"
)

type fakeQuoteClient struct {
	quotes map[string]decimal.Decimal
	err    error
	calls  int
}

func (f *fakeQuoteClient) Quote(_ context.Context, base, quote string) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	value, ok := f.quotes[base+"/"+quote]
	if !ok {
		return decimal.Zero, ErrQuoteUnavailable
	}
	return value, nil
}

func TestParsePairs(t *testing.T) {
	pairs, err := ParsePairs([]string{"eur/usd", " EUR/GBP "})
	require.NoError(t, err)
	require.Equal(t, []Pair{{Base: "EUR", Quote: "USD"}, {Base: "EUR", Quote: "GBP"}}, pairs)

	_, err = ParsePairs([]string{"EURUSD"})
	require.Error(t, err)

	_, err = ParsePairs([]string{"EUR/EUR"})
	require.Error(t, err)
}

func TestRefreshAllStoresQuotes(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	rateService, err := services.NewRateService(db)
	require.NoError(t, err)

	client := &fakeQuoteClient{quotes: map[string]decimal.Decimal{
		"EUR/USD": decimal.NewFromFloat(1.09),
		"EUR/GBP": decimal.NewFromFloat(0.84),
	}}

	scheduler, err := NewScheduler(client, rateService,
		[]Pair{{Base: "EUR", Quote: "USD"}, {Base: "EUR", Quote: "GBP"}}, "")
	require.NoError(t, err)

	require.NoError(t, scheduler.RefreshAll(context.Background()))
	require.Equal(t, 2, client.calls)

	stored, err := rateService.Latest(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	require.True(t, stored.Rate.Equal(decimal.NewFromFloat(1.09)))
	require.Equal(t, "scheduler", stored.Source)
}

func TestRefreshAllUpsertsSameDay(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	rateService, err := services.NewRateService(db)
	require.NoError(t, err)

	client := &fakeQuoteClient{quotes: map[string]decimal.Decimal{
		"EUR/USD": decimal.NewFromFloat(1.10),
	}}
	scheduler, err := NewScheduler(client, rateService, []Pair{{Base: "EUR", Quote: "USD"}}, "")
	require.NoError(t, err)

	require.NoError(t, scheduler.RefreshAll(context.Background()))

	client.quotes["EUR/USD"] = decimal.NewFromFloat(1.12)
	require.NoError(t, scheduler.RefreshAll(context.Background()))

	history, err := rateService.History(context.Background(), "EUR", "USD", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 1, "one row per pair per day")
	require.True(t, history[0].Rate.Equal(decimal.NewFromFloat(1.12)))
}

func TestRefreshAllContinuesPastFailingPairs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	rateService, err := services.NewRateService(db)
	require.NoError(t, err)

	client := &fakeQuoteClient{quotes: map[string]decimal.Decimal{
		"EUR/GBP": decimal.NewFromFloat(0.84),
	}}
	scheduler, err := NewScheduler(client, rateService,
		[]Pair{{Base: "EUR", Quote: "USD"}, {Base: "EUR", Quote: "GBP"}}, "")
	require.NoError(t, err)

	err = scheduler.RefreshAll(context.Background())
	require.ErrorIs(t, err, ErrQuoteUnavailable, "first failure is reported")
	require.Equal(t, 2, client.calls, "remaining pairs are still attempted")

	_, err = rateService.Latest(context.Background(), "EUR", "GBP")
	require.NoError(t, err)
}

func TestRefreshAllSurfacesRateLimit(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	rateService, err := services.NewRateService(db)
	require.NoError(t, err)

	client := &fakeQuoteClient{err: ErrRateLimited}
	scheduler, err := NewScheduler(client, rateService, []Pair{{Base: "EUR", Quote: "USD"}}, "")
	require.NoError(t, err)

	err = scheduler.RefreshAll(context.Background())
	require.ErrorIs(t, err, ErrRateLimited)
}

package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/internal/services"
)

func mustCompanyHandler(t *testing.T) (*CompanyHandler, *services.CompanyService, *cache.StatsCache) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	companies, err := services.NewCompanyService(db)
	require.NoError(t, err)

	stats := cache.NewStatsCache(time.Minute)
	dispatcher := cache.NewDispatcher(cache.NewMemoryStore(), stats)
	return NewCompanyHandler(companies, stats, dispatcher), companies, stats
}

func TestCompanyCreateAndGetRoundTrip(t *testing.T) {
	handler, _, _ := mustCompanyHandler(t)

	c, recorder := jsonContext(t, "owner-1", gin.H{
		"name":          "Acme GmbH",
		"email":         "billing@acme.example",
		"industry":      "Manufacturing",
		"payment_terms": "net_30",
		"base_currency": "eur",
	})
	handler.Create(c)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var created models.Company
	decodeData(t, recorder, &created)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Acme GmbH", created.Name)
	require.Equal(t, "manufacturing", created.Industry)
	require.Equal(t, "EUR", created.BaseCurrency)
	require.Equal(t, "owner-1", created.OwnerUserID)

	getCtx, getRecorder := getContext(t, "owner-1", "")
	getCtx.Params = gin.Params{gin.Param{Key: "id", Value: created.ID}}
	handler.Get(getCtx)
	require.Equal(t, http.StatusOK, getRecorder.Code)

	var fetched models.Company
	decodeData(t, getRecorder, &fetched)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, created.Name, fetched.Name)
}

func TestCompanyCreateRejectsInvalidPhone(t *testing.T) {
	handler, _, _ := mustCompanyHandler(t)

	c, recorder := jsonContext(t, "owner-1", gin.H{
		"name":  "Acme",
		"phone": "not-a-phone",
	})
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	payload := decodeResponse(t, recorder)
	require.False(t, payload.Success)
	require.NotNil(t, payload.Error)
	require.Contains(t, payload.Error.Details, "phone")
}

func TestCompanyGetUnknownIDAnswers404(t *testing.T) {
	handler, _, _ := mustCompanyHandler(t)

	c, recorder := getContext(t, "owner-1", "")
	c.Params = gin.Params{gin.Param{Key: "id", Value: "11111111-1111-1111-1111-111111111111"}}
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	payload := decodeResponse(t, recorder)
	require.False(t, payload.Success)
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
}

func TestCompanyListScopedToOwner(t *testing.T) {
	handler, companies, _ := mustCompanyHandler(t)

	for _, owner := range []string{"owner-1", "owner-1", "owner-2"} {
		_, err := companies.Create(context.Background(), services.CreateCompanyInput{
			Name:        "Co " + owner,
			OwnerUserID: owner,
		})
		require.NoError(t, err)
	}

	c, recorder := getContext(t, "owner-1", "")
	handler.List(c)
	require.Equal(t, http.StatusOK, recorder.Code)

	var listed []models.Company
	decodeData(t, recorder, &listed)
	require.Len(t, listed, 2)

	payload := decodeResponse(t, recorder)
	require.NotNil(t, payload.Meta)
	require.NotNil(t, payload.Meta.Total)
	require.Equal(t, int64(2), *payload.Meta.Total)
}

func TestCompanyStatisticsServedThroughCache(t *testing.T) {
	handler, companies, _ := mustCompanyHandler(t)

	_, err := companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "Cached Co",
		Industry:    "Retail",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	c, recorder := getContext(t, "owner-1", "")
	handler.Statistics(c)
	require.Equal(t, http.StatusOK, recorder.Code)

	var stats cache.CompanyStatistics
	decodeData(t, recorder, &stats)
	require.Equal(t, int64(1), stats.TotalActive)
	require.Equal(t, int64(1), stats.ByIndustry["retail"])

	// A second read within the TTL serves the cached snapshot, so a company
	// created in between is not yet visible.
	_, err = companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "Late Co",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	c2, recorder2 := getContext(t, "owner-1", "")
	handler.Statistics(c2)
	require.Equal(t, http.StatusOK, recorder2.Code)

	var cached cache.CompanyStatistics
	decodeData(t, recorder2, &cached)
	require.Equal(t, int64(1), cached.TotalActive, "stale-but-valid snapshot is served from cache")
}

func TestCompanyStatisticsRefreshAfterInvalidation(t *testing.T) {
	handler, companies, stats := mustCompanyHandler(t)

	_, err := companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "First",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	c, recorder := getContext(t, "owner-1", "")
	handler.Statistics(c)
	require.Equal(t, http.StatusOK, recorder.Code)

	_, err = companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "Second",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)
	stats.Clear()

	c2, recorder2 := getContext(t, "owner-1", "")
	handler.Statistics(c2)
	require.Equal(t, http.StatusOK, recorder2.Code)

	var refreshed cache.CompanyStatistics
	decodeData(t, recorder2, &refreshed)
	require.Equal(t, int64(2), refreshed.TotalActive)
}

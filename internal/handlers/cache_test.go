package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/cache"
)

func TestCacheInvalidateClearsTaggedEntries(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), cache.CompanyKey("c1"), []byte("cached"), time.Minute))

	handler := NewCacheHandler(cache.NewDispatcher(store, cache.NewStatsCache(time.Minute)))

	c, recorder := jsonContext(t, "admin-1", gin.H{"tag": "company", "target": "c1"})
	handler.Invalidate(c)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var result cache.Result
	decodeData(t, recorder, &result)
	require.True(t, result.OK)
	require.Equal(t, int64(1), result.Removed)

	_, found, err := store.Get(context.Background(), cache.CompanyKey("c1"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheInvalidateRejectsUnknownTag(t *testing.T) {
	handler := NewCacheHandler(newTestDispatcher())

	c, recorder := jsonContext(t, "admin-1", gin.H{"tag": "bogus"})
	handler.Invalidate(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	payload := decodeResponse(t, recorder)
	require.False(t, payload.Success)
	require.Contains(t, payload.Error.Message, `unknown invalidation tag "bogus"`)
	require.Contains(t, payload.Error.Message, "company-mutation", "the error names the valid tag set")
}

func TestCacheInvalidateRequiresTag(t *testing.T) {
	handler := NewCacheHandler(newTestDispatcher())

	c, recorder := jsonContext(t, "admin-1", gin.H{"target": "c1"})
	handler.Invalidate(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/middleware"
	"github.com/finbooks/finbooks/pkg/localstore"
	"github.com/finbooks/finbooks/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// jsonContext builds a gin test context carrying a JSON request body and the
// authenticated user id, the way the Auth middleware would leave it.
func jsonContext(t *testing.T, userID string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		c.Set(middleware.CtxUserIDKey, userID)
	}
	return c, recorder
}

// getContext builds a gin test context for a body-less request.
func getContext(t *testing.T, userID, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	target := "/"
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		c.Set(middleware.CtxUserIDKey, userID)
	}
	return c, recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

// decodeData unmarshals the envelope's data field into dest.
func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	payload := decodeResponse(t, recorder)
	require.True(t, payload.Success, "expected a success envelope, body: %s", recorder.Body.String())

	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

func newTestDispatcher() *cache.Dispatcher {
	return cache.NewDispatcher(cache.NewMemoryStore(), cache.NewStatsCache(time.Minute))
}

func mustMemStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.New(afero.NewMemMapFs(), "snapshots")
	require.NoError(t, err)
	return store
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/finbooks/finbooks/internal/auth"
)

func authProbe(t *testing.T) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "middleware-secret",
		Issuer:         "finbooks-test",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe", Auth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return router, jwt
}

func TestAuthRejectsMissingCredential(t *testing.T) {
	router, _ := authProbe(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	router, jwt := authProbe(t)

	token, err := jwt.GenerateAccessToken("user-7", "u@example.com")
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "user-7", recorder.Body.String())
}

func TestAuthFallsBackToSessionCookie(t *testing.T) {
	router, jwt := authProbe(t)

	token, err := jwt.GenerateAccessToken("user-8", "")
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "user-8", recorder.Body.String())
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	router, _ := authProbe(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Bearer not.a.token")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/finbooks/finbooks/internal/auth"
	"github.com/finbooks/finbooks/pkg/errors"
	"github.com/finbooks/finbooks/pkg/response"
)

// Context keys populated by the Auth middleware.
const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"

	// TokenCookieName is the cookie consulted when no Authorization header is present.
	TokenCookieName = "finbooks_token"
)

// Auth enforces JWT authentication, accepting the bearer credential from the
// Authorization header or the session cookie.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}

	if cookie, err := c.Cookie(TokenCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

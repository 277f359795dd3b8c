package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/finbooks/finbooks/pkg/errors"
	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/response"
)

// Recovery turns a handler panic into a logged 500. The client only ever
// sees the generic envelope; the panic value and stack stay in the log.
func Recovery() gin.HandlerFunc {
	panicLog := logger.WithModule("http")

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicLog.Error("panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_SERVER_ERROR",
					"message": "Internal server error",
				},
			})
		}()

		c.Next()
	}
}

// NotFoundHandler answers unknown routes with the standard JSON envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, apperrors.New("NOT_FOUND",
		fmt.Sprintf("route %s not found", c.Request.URL.Path), http.StatusNotFound))
}

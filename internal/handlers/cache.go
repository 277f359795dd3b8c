package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/cache"
	apperrors "github.com/finbooks/finbooks/pkg/errors"
	"github.com/finbooks/finbooks/pkg/response"
)

// CacheHandler exposes the invalidation dispatcher for operator use.
type CacheHandler struct {
	dispatcher *cache.Dispatcher
}

// NewCacheHandler constructs a cache handler.
func NewCacheHandler(dispatcher *cache.Dispatcher) *CacheHandler {
	return &CacheHandler{dispatcher: dispatcher}
}

type invalidateRequest struct {
	Tag    string `json:"tag" binding:"required"`
	Target string `json:"target"`
}

// Invalidate runs one invalidation synchronously and reports what it removed.
// Unknown tags answer 400 naming the valid set.
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req invalidateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), cache.Tag(req.Tag), req.Target)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	response.Success(c, http.StatusOK, result)
}

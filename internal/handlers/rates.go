package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/rates"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// RateHandler serves stored currency rates and the manual refresh sub-action.
type RateHandler struct {
	rates     *services.RateService
	scheduler *rates.Scheduler
}

// NewRateHandler constructs a rate handler.
func NewRateHandler(rateSvc *services.RateService, scheduler *rates.Scheduler) *RateHandler {
	return &RateHandler{rates: rateSvc, scheduler: scheduler}
}

// Latest returns the most recent stored quote for a pair.
func (h *RateHandler) Latest(c *gin.Context) {
	rate, err := h.rates.Latest(c.Request.Context(), c.Query("base"), c.Query("quote"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rate)
}

// History returns stored quotes for a pair within an optional day range.
func (h *RateHandler) History(c *gin.Context) {
	var from, to time.Time
	if parsed, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		from = parsed
	}
	if parsed, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		to = parsed
	}

	history, err := h.rates.History(c.Request.Context(), c.Query("base"), c.Query("quote"), from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, history)
}

// Refresh triggers an immediate refresh of every tracked pair without
// waiting for the next scheduled run.
func (h *RateHandler) Refresh(c *gin.Context) {
	if err := h.scheduler.RefreshAll(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refreshed": true})
}

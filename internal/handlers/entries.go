package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// EntryHandler serves the bookkeeping entry resource.
type EntryHandler struct {
	entries *services.EntryService
}

// NewEntryHandler constructs an entry handler.
func NewEntryHandler(entries *services.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

type createEntryRequest struct {
	CompanyID     string          `json:"company_id" binding:"required"`
	Date          *time.Time      `json:"date"`
	Memo          string          `json:"memo"`
	DebitAccount  string          `json:"debit_account" binding:"required"`
	CreditAccount string          `json:"credit_account" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
}

type updateEntryRequest struct {
	Date     *time.Time       `json:"date"`
	Memo     *string          `json:"memo"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category"`
}

// List returns a filtered page of entries.
func (h *EntryHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	opts := services.ListEntriesOptions{
		CompanyID: c.Query("company_id"),
		Category:  c.Query("category"),
		Page:      page,
		Sort:      sortFromQuery(c),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		opts.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		opts.To = &to
	}

	entries, total, err := h.entries.List(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, offsetMeta(page, total))
}

// Get returns one entry by id.
func (h *EntryHandler) Get(c *gin.Context) {
	entry, err := h.entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entry)
}

// Create posts a journal entry.
func (h *EntryHandler) Create(c *gin.Context) {
	var req createEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.CreateEntryInput{
		CompanyID:     req.CompanyID,
		Memo:          req.Memo,
		DebitAccount:  req.DebitAccount,
		CreditAccount: req.CreditAccount,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Category:      req.Category,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	entry, err := h.entries.Create(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// Update applies a partial merge to an entry.
func (h *EntryHandler) Update(c *gin.Context) {
	var req updateEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.entries.Update(c.Request.Context(), c.Param("id"), services.UpdateEntryInput{
		Date:     req.Date,
		Memo:     req.Memo,
		Amount:   req.Amount,
		Category: req.Category,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// Delete removes an entry not linked to transactions.
func (h *EntryHandler) Delete(c *gin.Context) {
	if err := h.entries.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

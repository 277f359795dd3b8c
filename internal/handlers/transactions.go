package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// TransactionHandler serves the transaction resource with cursor pagination
// and the entry link/unlink sub-actions.
type TransactionHandler struct {
	transactions *services.TransactionService
}

// NewTransactionHandler constructs a transaction handler.
func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type createTransactionRequest struct {
	CompanyID     string                 `json:"company_id" binding:"required"`
	WalletID      *string                `json:"wallet_id"`
	BankAccountID *string                `json:"bank_account_id"`
	Direction     string                 `json:"direction" binding:"required"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	Description   string                 `json:"description"`
	OccurredAt    *time.Time             `json:"occurred_at"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type linkEntryRequest struct {
	EntryID string `json:"entry_id" binding:"required"`
}

// List returns one cursor page of transactions, newest first. The response
// meta carries a continuation cursor and has-more flag, never an offset total.
func (h *TransactionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	opts := services.ListTransactionsOptions{
		CompanyID:     c.Query("company_id"),
		WalletID:      c.Query("wallet_id"),
		BankAccountID: c.Query("bank_account_id"),
		Direction:     c.Query("direction"),
		Cursor:        c.Query("cursor"),
		Limit:         limit,
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		opts.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		opts.To = &to
	}

	page, err := h.transactions.List(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Transactions, &response.Meta{
		NextCursor: page.NextCursor,
		HasMore:    &page.HasMore,
	})
}

// Get returns one transaction with its linked entry.
func (h *TransactionHandler) Get(c *gin.Context) {
	transaction, err := h.transactions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, transaction)
}

// Create records a manual transaction.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.CreateTransactionInput{
		CompanyID:     req.CompanyID,
		WalletID:      req.WalletID,
		BankAccountID: req.BankAccountID,
		Direction:     req.Direction,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		Metadata:      req.Metadata,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	transaction, err := h.transactions.Create(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, transaction)
}

// Link attaches a bookkeeping entry to a transaction.
func (h *TransactionHandler) Link(c *gin.Context) {
	var req linkEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	transaction, err := h.transactions.Link(c.Request.Context(), c.Param("id"), req.EntryID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, transaction)
}

// Unlink detaches the bookkeeping entry from a transaction.
func (h *TransactionHandler) Unlink(c *gin.Context) {
	transaction, err := h.transactions.Unlink(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, transaction)
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.transactions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

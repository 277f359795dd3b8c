package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// BankAccountHandler serves the bank account resource. Responses only ever
// carry the masked account tail; the full number stays encrypted at rest.
type BankAccountHandler struct {
	accounts  *services.BankAccountService
	snapshots *services.SnapshotService
}

// NewBankAccountHandler constructs a bank account handler.
func NewBankAccountHandler(accounts *services.BankAccountService, snapshots *services.SnapshotService) *BankAccountHandler {
	return &BankAccountHandler{accounts: accounts, snapshots: snapshots}
}

type createBankAccountRequest struct {
	CompanyID     string          `json:"company_id" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	BankName      string          `json:"bank_name"`
	Currency      string          `json:"currency"`
	AccountNumber string          `json:"account_number" binding:"required"`
	Balance       decimal.Decimal `json:"balance"`
}

type updateBankAccountRequest struct {
	Name          *string          `json:"name"`
	BankName      *string          `json:"bank_name"`
	Currency      *string          `json:"currency"`
	AccountNumber *string          `json:"account_number"`
	Balance       *decimal.Decimal `json:"balance"`
	Active        *bool            `json:"active"`
}

// List returns all bank accounts for the company in scope.
func (h *BankAccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accounts)
}

// Get returns one bank account by id.
func (h *BankAccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}

// Create registers a bank account.
func (h *BankAccountHandler) Create(c *gin.Context) {
	var req createBankAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), services.CreateBankAccountInput{
		CompanyID:     req.CompanyID,
		Name:          req.Name,
		BankName:      req.BankName,
		Currency:      req.Currency,
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot(c)
	response.Success(c, http.StatusCreated, account)
}

// Update applies a partial merge to a bank account.
func (h *BankAccountHandler) Update(c *gin.Context) {
	var req updateBankAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), c.Param("id"), services.UpdateBankAccountInput{
		Name:          req.Name,
		BankName:      req.BankName,
		Currency:      req.Currency,
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,
		Active:        req.Active,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot(c)
	response.Success(c, http.StatusOK, account)
}

// Delete removes a bank account, clearing transaction references.
func (h *BankAccountHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot(c)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// syncSnapshot refreshes the bank account mirror best-effort; mutations never
// fail because the snapshot write did.
func (h *BankAccountHandler) syncSnapshot(_ *gin.Context) {
	if h.snapshots == nil {
		return
	}
	go func() {
		_ = h.snapshots.SyncBankAccounts(context.Background())
	}()
}

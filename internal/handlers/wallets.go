package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/chain"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// WalletHandler serves the wallet resource and the on-chain import sub-action.
type WalletHandler struct {
	wallets   *services.WalletService
	importer  *chain.Importer
	snapshots *services.SnapshotService
}

// NewWalletHandler constructs a wallet handler.
func NewWalletHandler(wallets *services.WalletService, importer *chain.Importer, snapshots *services.SnapshotService) *WalletHandler {
	return &WalletHandler{wallets: wallets, importer: importer, snapshots: snapshots}
}

type createWalletRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Chain     string `json:"chain" binding:"required"`
	Address   string `json:"address" binding:"required"`
}

type updateWalletRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// List returns all wallets for the company in scope.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.wallets.List(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, wallets)
}

// Get returns one wallet by id.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.wallets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, wallet)
}

// Create tracks a new on-chain address.
func (h *WalletHandler) Create(c *gin.Context) {
	var req createWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	wallet, err := h.wallets.Create(c.Request.Context(), services.CreateWalletInput{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Chain:     req.Chain,
		Address:   req.Address,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot()
	response.Success(c, http.StatusCreated, wallet)
}

// Update applies a partial merge to a wallet.
func (h *WalletHandler) Update(c *gin.Context) {
	var req updateWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	wallet, err := h.wallets.Update(c.Request.Context(), c.Param("id"), services.UpdateWalletInput{
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot()
	response.Success(c, http.StatusOK, wallet)
}

// Delete stops tracking a wallet.
func (h *WalletHandler) Delete(c *gin.Context) {
	if err := h.wallets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	h.syncSnapshot()
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Import pulls new on-chain transactions for a wallet. Answers 503 when the
// explorer integration is unconfigured and 429 when the upstream throttles.
func (h *WalletHandler) Import(c *gin.Context) {
	wallet, err := h.wallets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := h.importer.ImportWallet(c.Request.Context(), wallet)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *WalletHandler) syncSnapshot() {
	if h.snapshots == nil {
		return
	}
	go func() {
		_ = h.snapshots.SyncWallets(context.Background())
	}()
}

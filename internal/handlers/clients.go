package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// ClientHandler serves the client resource.
type ClientHandler struct {
	clients    *services.ClientService
	dispatcher *cache.Dispatcher
}

// NewClientHandler constructs a client handler.
func NewClientHandler(clients *services.ClientService, dispatcher *cache.Dispatcher) *ClientHandler {
	return &ClientHandler{clients: clients, dispatcher: dispatcher}
}

type createClientRequest struct {
	CompanyID    string `json:"company_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Address      string `json:"address"`
	TaxID        string `json:"tax_id"`
	PaymentTerms string `json:"payment_terms" validate:"omitempty,payment_terms"`
}

type updateClientRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	TaxID        *string `json:"tax_id"`
	PaymentTerms *string `json:"payment_terms"`
	Status       *string `json:"status"`
}

// List returns a filtered page of clients.
func (h *ClientHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	clients, total, err := h.clients.List(c.Request.Context(), services.ListClientsOptions{
		CompanyID: c.Query("company_id"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Page:      page,
		Sort:      sortFromQuery(c),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, clients, offsetMeta(page, total))
}

// Get returns one client by id.
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, client)
}

// Create registers a client.
func (h *ClientHandler) Create(c *gin.Context) {
	var req createClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clients.Create(c.Request.Context(), services.CreateClientInput{
		CompanyID:    req.CompanyID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		TaxID:        req.TaxID,
		PaymentTerms: req.PaymentTerms,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagSearch, "")
	response.Success(c, http.StatusCreated, client)
}

// Update applies a partial merge to a client.
func (h *ClientHandler) Update(c *gin.Context) {
	var req updateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clients.Update(c.Request.Context(), c.Param("id"), services.UpdateClientInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		TaxID:        req.TaxID,
		PaymentTerms: req.PaymentTerms,
		Status:       req.Status,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagSearch, "")
	response.Success(c, http.StatusOK, client)
}

// Delete removes a client that has no invoices.
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagSearch, "")
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

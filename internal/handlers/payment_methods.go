package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// PaymentMethodHandler serves the payment method resource.
type PaymentMethodHandler struct {
	methods *services.PaymentMethodService
}

// NewPaymentMethodHandler constructs a payment method handler.
func NewPaymentMethodHandler(methods *services.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{methods: methods}
}

type createPaymentMethodRequest struct {
	CompanyID string                 `json:"company_id" binding:"required"`
	Name      string                 `json:"name" binding:"required"`
	Kind      string                 `json:"kind" binding:"required"`
	Details   map[string]interface{} `json:"details"`
}

type updatePaymentMethodRequest struct {
	Name    *string                `json:"name"`
	Details map[string]interface{} `json:"details"`
	Active  *bool                  `json:"active"`
}

// List returns all payment methods for the company in scope.
func (h *PaymentMethodHandler) List(c *gin.Context) {
	methods, err := h.methods.List(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, methods)
}

// Get returns one payment method by id.
func (h *PaymentMethodHandler) Get(c *gin.Context) {
	method, err := h.methods.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, method)
}

// Create registers a payment method.
func (h *PaymentMethodHandler) Create(c *gin.Context) {
	var req createPaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}

	method, err := h.methods.Create(c.Request.Context(), services.CreatePaymentMethodInput{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Kind:      req.Kind,
		Details:   req.Details,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, method)
}

// Update applies a partial merge to a payment method.
func (h *PaymentMethodHandler) Update(c *gin.Context) {
	var req updatePaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}

	method, err := h.methods.Update(c.Request.Context(), c.Param("id"), services.UpdatePaymentMethodInput{
		Name:    req.Name,
		Details: req.Details,
		Active:  req.Active,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, method)
}

// Delete removes a payment method.
func (h *PaymentMethodHandler) Delete(c *gin.Context) {
	if err := h.methods.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

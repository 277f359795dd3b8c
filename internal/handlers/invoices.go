package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// InvoiceHandler serves the invoice resource including the send and status
// sub-actions.
type InvoiceHandler struct {
	invoices   *services.InvoiceService
	dispatcher *cache.Dispatcher
}

// NewInvoiceHandler constructs an invoice handler.
func NewInvoiceHandler(invoices *services.InvoiceService, dispatcher *cache.Dispatcher) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, dispatcher: dispatcher}
}

type invoiceItemRequest struct {
	ProductID   *string         `json:"product_id"`
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	CompanyID string               `json:"company_id" binding:"required"`
	ClientID  string               `json:"client_id" binding:"required"`
	Number    string               `json:"number" binding:"required"`
	Currency  string               `json:"currency"`
	IssueDate *time.Time           `json:"issue_date"`
	DueDate   *time.Time           `json:"due_date"`
	Notes     string               `json:"notes"`
	TaxRate   decimal.Decimal      `json:"tax_rate"`
	Items     []invoiceItemRequest `json:"items" binding:"required,min=1"`
}

type updateInvoiceRequest struct {
	Number  *string    `json:"number"`
	DueDate *time.Time `json:"due_date"`
	Notes   *string    `json:"notes"`
}

type invoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns a filtered page of invoices with aggregate totals computed
// alongside, never from the returned page.
func (h *InvoiceHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	opts := services.ListInvoicesOptions{
		CompanyID: c.Query("company_id"),
		ClientID:  c.Query("client_id"),
		Status:    c.Query("status"),
		Page:      page,
		Sort:      sortFromQuery(c),
	}

	invoices, total, err := h.invoices.List(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	totals, err := h.invoices.Totals(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{
		"invoices": invoices,
		"totals":   totals,
	}, offsetMeta(page, total))
}

// Get returns one invoice with its client and items.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, invoice)
}

// Create issues a draft invoice.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req createInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]services.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.InvoiceItemInput{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	input := services.CreateInvoiceInput{
		CompanyID: req.CompanyID,
		ClientID:  req.ClientID,
		Number:    req.Number,
		Currency:  req.Currency,
		Notes:     req.Notes,
		TaxRate:   req.TaxRate,
		Items:     items,
	}
	if req.IssueDate != nil {
		input.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		input.DueDate = *req.DueDate
	}

	invoice, err := h.invoices.Create(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCalendar, invoice.CompanyID)
	response.Success(c, http.StatusCreated, invoice)
}

// Update applies a partial merge to an invoice.
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req updateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.Update(c.Request.Context(), c.Param("id"), services.UpdateInvoiceInput{
		Number:  req.Number,
		DueDate: req.DueDate,
		Notes:   req.Notes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCalendar, invoice.CompanyID)
	response.Success(c, http.StatusOK, invoice)
}

// Send transitions a draft invoice to sent, or straight to overdue when the
// due date already passed.
func (h *InvoiceHandler) Send(c *gin.Context) {
	invoice, err := h.invoices.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCalendar, invoice.CompanyID)
	response.Success(c, http.StatusOK, invoice)
}

// SetStatus moves an invoice to an explicit status.
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	var req invoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCalendar, invoice.CompanyID)
	response.Success(c, http.StatusOK, invoice)
}

// Delete removes an invoice and its items.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

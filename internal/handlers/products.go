package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// ProductHandler serves the product resource.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs a product handler.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	CompanyID   string          `json:"company_id" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Currency    string          `json:"currency"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Currency    *string          `json:"currency"`
	Active      *bool            `json:"active"`
}

// List returns a filtered page of products.
func (h *ProductHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	products, total, err := h.products.List(c.Request.Context(), services.ListProductsOptions{
		CompanyID:  c.Query("company_id"),
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("search"),
		Page:       page,
		Sort:       sortFromQuery(c),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, offsetMeta(page, total))
}

// Get returns one product by id.
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Create adds a product to the catalogue.
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.products.Create(c.Request.Context(), services.CreateProductInput{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Currency:    req.Currency,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, product)
}

// Update applies a partial merge to a product.
func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), services.UpdateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Currency:    req.Currency,
		Active:      req.Active,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

// Delete removes a product not referenced by invoice lines.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

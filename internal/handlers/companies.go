package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// CompanyHandler serves the company resource and its statistics endpoint.
type CompanyHandler struct {
	companies  *services.CompanyService
	stats      *cache.StatsCache
	dispatcher *cache.Dispatcher
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(companies *services.CompanyService, stats *cache.StatsCache, dispatcher *cache.Dispatcher) *CompanyHandler {
	return &CompanyHandler{companies: companies, stats: stats, dispatcher: dispatcher}
}

type createCompanyRequest struct {
	Name         string `json:"name" binding:"required"`
	LegalName    string `json:"legal_name"`
	TaxID        string `json:"tax_id"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Website      string `json:"website"`
	LogoURL      string `json:"logo_url" validate:"omitempty,logo"`
	Industry     string `json:"industry"`
	PaymentTerms string `json:"payment_terms" validate:"omitempty,payment_terms"`
	BaseCurrency string `json:"base_currency"`
}

type updateCompanyRequest struct {
	Name         *string `json:"name"`
	LegalName    *string `json:"legal_name"`
	TaxID        *string `json:"tax_id"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Website      *string `json:"website"`
	LogoURL      *string `json:"logo_url"`
	Industry     *string `json:"industry"`
	PaymentTerms *string `json:"payment_terms"`
	Status       *string `json:"status"`
	BaseCurrency *string `json:"base_currency"`
}

func pageFromQuery(c *gin.Context) services.Page {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return services.Page{Offset: offset, Limit: limit}
}

func sortFromQuery(c *gin.Context) services.Sort {
	return services.Sort{
		Field:     c.Query("sort"),
		Direction: c.Query("direction"),
	}
}

func offsetMeta(page services.Page, total int64) *response.Meta {
	normalised := page.Normalise()
	return &response.Meta{
		Offset: normalised.Offset,
		Limit:  normalised.Limit,
		Total:  &total,
	}
}

// List returns a filtered page of the caller's companies.
func (h *CompanyHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	companies, total, err := h.companies.List(c.Request.Context(), services.ListCompaniesOptions{
		OwnerUserID: currentUserID(c),
		Status:      c.Query("status"),
		Industry:    c.Query("industry"),
		Search:      c.Query("search"),
		Page:        page,
		Sort:        sortFromQuery(c),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, companies, offsetMeta(page, total))
}

// Get returns one company by id.
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// Create onboards a company owned by the caller.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req createCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companies.Create(c.Request.Context(), services.CreateCompanyInput{
		Name:         req.Name,
		LegalName:    req.LegalName,
		TaxID:        req.TaxID,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		LogoURL:      req.LogoURL,
		Industry:     req.Industry,
		PaymentTerms: req.PaymentTerms,
		BaseCurrency: req.BaseCurrency,
		OwnerUserID:  currentUserID(c),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCompanyMutation, company.ID)
	response.Success(c, http.StatusCreated, company)
}

// Update applies a partial merge to a company.
func (h *CompanyHandler) Update(c *gin.Context) {
	var req updateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companies.Update(c.Request.Context(), c.Param("id"), services.UpdateCompanyInput{
		Name:         req.Name,
		LegalName:    req.LegalName,
		TaxID:        req.TaxID,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		LogoURL:      req.LogoURL,
		Industry:     req.Industry,
		PaymentTerms: req.PaymentTerms,
		Status:       req.Status,
		BaseCurrency: req.BaseCurrency,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCompanyMutation, company.ID)
	response.Success(c, http.StatusOK, company)
}

// Delete removes a company without dependent records.
func (h *CompanyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.companies.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	h.dispatcher.DispatchAsync(cache.TagCompanyMutation, id)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Statistics serves the aggregate company snapshot through the TTL cache. A
// fresh value is fetched only when the cached one is absent or stale; callers
// racing an in-flight refresh get the pre-refresh snapshot.
func (h *CompanyHandler) Statistics(c *gin.Context) {
	if stats, ok := h.stats.Get(); ok {
		response.Success(c, http.StatusOK, stats)
		return
	}

	stats, ok := h.stats.Refresh(c.Request.Context(), func(ctx context.Context) (cache.CompanyStatistics, error) {
		return h.companies.Statistics(ctx)
	})
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"available": false})
		return
	}

	response.Success(c, http.StatusOK, stats)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product service: product not found")
	// ErrProductInUse rejects deleting a product referenced by invoice lines.
	ErrProductInUse = errors.New("product service: product is referenced by invoice items")
)

// ProductService manages the sellable catalogue of a company.
type ProductService struct {
	db *gorm.DB
}

// NewProductService constructs a product service.
func NewProductService(db *gorm.DB) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db}, nil
}

// ListProductsOptions controls product filtering and pagination.
type ListProductsOptions struct {
	CompanyID  string
	ActiveOnly bool
	Search     string
	Page       Page
	Sort       Sort
}

// CreateProductInput captures the fields accepted when adding a product.
type CreateProductInput struct {
	CompanyID   string
	Name        string
	SKU         string
	Description string
	UnitPrice   decimal.Decimal
	Currency    string
}

// UpdateProductInput describes mutable product fields. A nil pointer indicates no change.
type UpdateProductInput struct {
	Name        *string
	SKU         *string
	Description *string
	UnitPrice   *decimal.Decimal
	Currency    *string
	Active      *bool
}

var productSortColumns = map[string]string{
	"name":       "name",
	"sku":        "sku",
	"unit_price": "unit_price",
	"created_at": "created_at",
}

// List returns one page of products plus the total for the filtered scope.
func (s *ProductService) List(ctx context.Context, opts ListProductsOptions) ([]models.Product, int64, error) {
	if s == nil {
		return nil, 0, errors.New("product service: service not initialised")
	}
	ctx = ensuredContext(ctx)
	page := opts.Page.Normalise()

	q := s.db.WithContext(ctx).Model(&models.Product{})
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if opts.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := q.Order(opts.Sort.OrderClause(productSortColumns, "LOWER(name)")).
		Offset(page.Offset).Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Get retrieves a product by identifier.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	if s == nil {
		return nil, errors.New("product service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create adds a new product to the company catalogue.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if s == nil {
		return nil, errors.New("product service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	product := models.Product{
		CompanyID:   companyID,
		Name:        name,
		SKU:         strings.TrimSpace(input.SKU),
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   input.UnitPrice,
		Currency:    normalizeCurrency(input.Currency, "EUR"),
		Active:      true,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update applies a partial field merge to an existing product.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*models.Product, error) {
	if s == nil {
		return nil, errors.New("product service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		product.Name = name
	}
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.Currency != nil {
		product.Currency = normalizeCurrency(*input.Currency, product.Currency)
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product unless invoice lines still reference it. Retiring
// a product that was ever billed is done by flipping Active off instead.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("product service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var items int64
	if err := s.db.WithContext(ctx).Model(&models.InvoiceItem{}).Where("product_id = ?", product.ID).Count(&items).Error; err != nil {
		return err
	}
	if items > 0 {
		return ErrProductInUse
	}

	return s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", product.ID).Error
}

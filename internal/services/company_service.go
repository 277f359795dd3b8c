package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/validator"
)

var (
	// ErrCompanyNotFound indicates the requested company does not exist.
	ErrCompanyNotFound = errors.New("company service: company not found")
	// ErrCompanyHasRecords rejects deleting a company that still owns records.
	ErrCompanyHasRecords = errors.New("company service: company still has records")
)

// CompanyService manages tenant companies and their aggregate statistics.
type CompanyService struct {
	db *gorm.DB
}

// NewCompanyService constructs a company service once a database handle is supplied.
func NewCompanyService(db *gorm.DB) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	return &CompanyService{db: db}, nil
}

// ListCompaniesOptions controls company filtering and pagination.
type ListCompaniesOptions struct {
	OwnerUserID string
	Status      string
	Industry    string
	Search      string
	Page        Page
	Sort        Sort
}

// CreateCompanyInput captures the fields accepted when onboarding a company.
type CreateCompanyInput struct {
	Name         string
	LegalName    string
	TaxID        string
	Email        string
	Phone        string
	Website      string
	LogoURL      string
	Industry     string
	PaymentTerms string
	BaseCurrency string
	OwnerUserID  string
}

// UpdateCompanyInput describes mutable company fields. A nil pointer indicates no change.
type UpdateCompanyInput struct {
	Name         *string
	LegalName    *string
	TaxID        *string
	Email        *string
	Phone        *string
	Website      *string
	LogoURL      *string
	Industry     *string
	PaymentTerms *string
	Status       *string
	BaseCurrency *string
}

var companySortColumns = map[string]string{
	"name":       "name",
	"industry":   "industry",
	"status":     "status",
	"created_at": "created_at",
}

// List returns one page of companies plus the unfiltered total for the scope.
func (s *CompanyService) List(ctx context.Context, opts ListCompaniesOptions) ([]models.Company, int64, error) {
	if s == nil {
		return nil, 0, errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)
	page := opts.Page.Normalise()

	q := s.db.WithContext(ctx).Model(&models.Company{})
	if owner := strings.TrimSpace(opts.OwnerUserID); owner != "" {
		q = q.Where("owner_user_id = ?", owner)
	}
	if status := strings.TrimSpace(opts.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if industry := strings.TrimSpace(opts.Industry); industry != "" {
		q = q.Where("industry = ?", industry)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(legal_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	err := q.Order(opts.Sort.OrderClause(companySortColumns, "LOWER(name)")).
		Offset(page.Offset).Limit(page.Limit).
		Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// Get retrieves a company by identifier.
func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	if s == nil {
		return nil, errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

// Create onboards a new company.
func (s *CompanyService) Create(ctx context.Context, input CreateCompanyInput) (*models.Company, error) {
	if s == nil {
		return nil, errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	owner := strings.TrimSpace(input.OwnerUserID)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner user id is required", ErrValidation)
	}

	if phone := strings.TrimSpace(input.Phone); phone != "" && !validator.IsValidPhone(phone) {
		return nil, fmt.Errorf("%w: invalid phone %q", ErrValidation, phone)
	}
	if logo := strings.TrimSpace(input.LogoURL); logo != "" && !validator.IsValidLogo(logo) {
		return nil, fmt.Errorf("%w: logo must be an http(s) URL or data-image string", ErrValidation)
	}

	terms := strings.TrimSpace(input.PaymentTerms)
	if terms == "" {
		terms = "net_30"
	}
	if !validator.IsValidPaymentTerms(terms) {
		return nil, fmt.Errorf("%w: invalid payment terms %q", ErrValidation, terms)
	}

	company := models.Company{
		Name:         name,
		LegalName:    strings.TrimSpace(input.LegalName),
		TaxID:        strings.TrimSpace(input.TaxID),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Website:      strings.TrimSpace(input.Website),
		LogoURL:      strings.TrimSpace(input.LogoURL),
		Industry:     strings.ToLower(strings.TrimSpace(input.Industry)),
		PaymentTerms: terms,
		Status:       models.CompanyStatusActive,
		BaseCurrency: normalizeCurrency(input.BaseCurrency, "EUR"),
		OwnerUserID:  owner,
	}

	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update applies a partial field merge to an existing company.
func (s *CompanyService) Update(ctx context.Context, id string, input UpdateCompanyInput) (*models.Company, error) {
	if s == nil {
		return nil, errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		company.Name = name
	}
	if input.LegalName != nil {
		company.LegalName = strings.TrimSpace(*input.LegalName)
	}
	if input.TaxID != nil {
		company.TaxID = strings.TrimSpace(*input.TaxID)
	}
	if input.Email != nil {
		company.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" && !validator.IsValidPhone(phone) {
			return nil, fmt.Errorf("%w: invalid phone %q", ErrValidation, phone)
		}
		company.Phone = phone
	}
	if input.Website != nil {
		company.Website = strings.TrimSpace(*input.Website)
	}
	if input.LogoURL != nil {
		logo := strings.TrimSpace(*input.LogoURL)
		if logo != "" && !validator.IsValidLogo(logo) {
			return nil, fmt.Errorf("%w: logo must be an http(s) URL or data-image string", ErrValidation)
		}
		company.LogoURL = logo
	}
	if input.Industry != nil {
		company.Industry = strings.ToLower(strings.TrimSpace(*input.Industry))
	}
	if input.PaymentTerms != nil {
		terms := strings.TrimSpace(*input.PaymentTerms)
		if !validator.IsValidPaymentTerms(terms) {
			return nil, fmt.Errorf("%w: invalid payment terms %q", ErrValidation, terms)
		}
		company.PaymentTerms = terms
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status != models.CompanyStatusActive && status != models.CompanyStatusPassive {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
		}
		company.Status = status
	}
	if input.BaseCurrency != nil {
		company.BaseCurrency = normalizeCurrency(*input.BaseCurrency, company.BaseCurrency)
	}

	if err := s.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// Delete removes a company. Companies that still own clients, invoices or
// products are rejected rather than cascaded.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	company, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	for _, dependent := range []interface{}{&models.Client{}, &models.Invoice{}, &models.Product{}} {
		var count int64
		if err := s.db.WithContext(ctx).Model(dependent).Where("company_id = ?", company.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCompanyHasRecords
		}
	}

	return s.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", company.ID).Error
}

// Statistics computes the aggregate company snapshot with a fixed batch of
// concurrent aggregate queries rather than scanning rows.
func (s *CompanyService) Statistics(ctx context.Context) (cache.CompanyStatistics, error) {
	if s == nil {
		return cache.CompanyStatistics{}, errors.New("company service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var stats cache.CompanyStatistics
	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Company{}).
			Where("status = ?", models.CompanyStatusActive).
			Count(&stats.TotalActive).Error
	})

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Company{}).
			Where("status = ?", models.CompanyStatusPassive).
			Count(&stats.TotalPassive).Error
	})

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Company{}).
			Where("created_at >= ?", monthStart).
			Count(&stats.NewThisMonth).Error
	})

	type industryCount struct {
		Industry string
		Count    int64
	}
	var byIndustry []industryCount
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Company{}).
			Select("industry, COUNT(*) AS count").
			Where("industry <> ''").
			Group("industry").
			Scan(&byIndustry).Error
	})

	if err := g.Wait(); err != nil {
		return cache.CompanyStatistics{}, err
	}

	stats.ByIndustry = make(map[string]int64, len(byIndustry))
	for _, row := range byIndustry {
		stats.ByIndustry[row.Industry] = row.Count
	}

	return stats, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/validator"
)

var (
	// ErrClientNotFound indicates the requested client does not exist.
	ErrClientNotFound = errors.New("client service: client not found")
	// ErrClientHasInvoices rejects deleting a client that is still referenced by invoices.
	ErrClientHasInvoices = errors.New("client service: client still has invoices")
)

// ClientService manages the customers of a company.
type ClientService struct {
	db *gorm.DB
}

// NewClientService constructs a client service.
func NewClientService(db *gorm.DB) (*ClientService, error) {
	if db == nil {
		return nil, errors.New("client service: db is required")
	}
	return &ClientService{db: db}, nil
}

// ListClientsOptions controls client filtering and pagination.
type ListClientsOptions struct {
	CompanyID string
	Status    string
	Search    string
	Page      Page
	Sort      Sort
}

// CreateClientInput captures the fields accepted when registering a client.
type CreateClientInput struct {
	CompanyID    string
	Name         string
	Email        string
	Phone        string
	Address      string
	TaxID        string
	PaymentTerms string
}

// UpdateClientInput describes mutable client fields. A nil pointer indicates no change.
type UpdateClientInput struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	TaxID        *string
	PaymentTerms *string
	Status       *string
}

var clientSortColumns = map[string]string{
	"name":       "name",
	"status":     "status",
	"created_at": "created_at",
}

// List returns one page of clients plus the total for the filtered scope.
func (s *ClientService) List(ctx context.Context, opts ListClientsOptions) ([]models.Client, int64, error) {
	if s == nil {
		return nil, 0, errors.New("client service: service not initialised")
	}
	ctx = ensuredContext(ctx)
	page := opts.Page.Normalise()

	q := s.db.WithContext(ctx).Model(&models.Client{})
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if status := strings.TrimSpace(opts.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	err := q.Order(opts.Sort.OrderClause(clientSortColumns, "LOWER(name)")).
		Offset(page.Offset).Limit(page.Limit).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// Get retrieves a client by identifier.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	if s == nil {
		return nil, errors.New("client service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// Create registers a new client under its company.
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*models.Client, error) {
	if s == nil {
		return nil, errors.New("client service: service not initialised")
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
	if phone := strings.TrimSpace(input.Phone); phone != "" && !validator.IsValidPhone(phone) {
		return nil, fmt.Errorf("%w: invalid phone %q", ErrValidation, phone)
	}

	terms := strings.TrimSpace(input.PaymentTerms)
	if terms == "" {
		terms = "net_30"
	}
	if !validator.IsValidPaymentTerms(terms) {
		return nil, fmt.Errorf("%w: invalid payment terms %q", ErrValidation, terms)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	client := models.Client{
		CompanyID:    companyID,
		Name:         name,
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		TaxID:        strings.TrimSpace(input.TaxID),
		PaymentTerms: terms,
		Status:       "active",
	}

	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Update applies a partial field merge to an existing client.
func (s *ClientService) Update(ctx context.Context, id string, input UpdateClientInput) (*models.Client, error) {
	if s == nil {
		return nil, errors.New("client service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		client.Name = name
	}
	if input.Email != nil {
		client.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" && !validator.IsValidPhone(phone) {
			return nil, fmt.Errorf("%w: invalid phone %q", ErrValidation, phone)
		}
		client.Phone = phone
	}
	if input.Address != nil {
		client.Address = strings.TrimSpace(*input.Address)
	}
	if input.TaxID != nil {
		client.TaxID = strings.TrimSpace(*input.TaxID)
	}
	if input.PaymentTerms != nil {
		terms := strings.TrimSpace(*input.PaymentTerms)
		if !validator.IsValidPaymentTerms(terms) {
			return nil, fmt.Errorf("%w: invalid payment terms %q", ErrValidation, terms)
		}
		client.PaymentTerms = terms
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status != "active" && status != "passive" {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
		}
		client.Status = status
	}

	if err := s.db.WithContext(ctx).Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client. Clients referenced by invoices are rejected so
// billing history stays intact.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("client service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var invoices int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&invoices).Error; err != nil {
		return err
	}
	if invoices > 0 {
		return ErrClientHasInvoices
	}

	return s.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", client.ID).Error
}

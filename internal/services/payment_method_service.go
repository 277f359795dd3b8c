package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

// ErrPaymentMethodNotFound indicates the requested payment method does not exist.
var ErrPaymentMethodNotFound = errors.New("payment method service: payment method not found")

var paymentMethodKinds = map[string]bool{
	models.PaymentMethodBank:   true,
	models.PaymentMethodCard:   true,
	models.PaymentMethodCash:   true,
	models.PaymentMethodCrypto: true,
}

// PaymentMethodService manages how a company accepts payment.
type PaymentMethodService struct {
	db *gorm.DB
}

// NewPaymentMethodService constructs a payment method service.
func NewPaymentMethodService(db *gorm.DB) (*PaymentMethodService, error) {
	if db == nil {
		return nil, errors.New("payment method service: db is required")
	}
	return &PaymentMethodService{db: db}, nil
}

// CreatePaymentMethodInput captures the fields accepted on creation.
type CreatePaymentMethodInput struct {
	CompanyID string
	Name      string
	Kind      string
	Details   map[string]interface{}
}

// UpdatePaymentMethodInput describes mutable fields. A nil pointer indicates no change.
type UpdatePaymentMethodInput struct {
	Name    *string
	Details map[string]interface{}
	Active  *bool
}

// List returns all payment methods for a company, active ones first.
func (s *PaymentMethodService) List(ctx context.Context, companyID string) ([]models.PaymentMethod, error) {
	if s == nil {
		return nil, errors.New("payment method service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}

	var methods []models.PaymentMethod
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("active DESC, name ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// Get retrieves a payment method by identifier.
func (s *PaymentMethodService) Get(ctx context.Context, id string) (*models.PaymentMethod, error) {
	if s == nil {
		return nil, errors.New("payment method service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var method models.PaymentMethod
	if err := s.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &method, nil
}

// Create registers a payment method for a company.
func (s *PaymentMethodService) Create(ctx context.Context, input CreatePaymentMethodInput) (*models.PaymentMethod, error) {
	if s == nil {
		return nil, errors.New("payment method service: service not initialised")
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
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if !paymentMethodKinds[kind] {
		return nil, fmt.Errorf("%w: invalid payment method kind %q", ErrValidation, kind)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	details, err := marshalDetails(input.Details)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod{
		CompanyID: companyID,
		Name:      name,
		Kind:      kind,
		Details:   details,
		Active:    true,
	}

	if err := s.db.WithContext(ctx).Create(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// Update applies a partial field merge to an existing payment method.
func (s *PaymentMethodService) Update(ctx context.Context, id string, input UpdatePaymentMethodInput) (*models.PaymentMethod, error) {
	if s == nil {
		return nil, errors.New("payment method service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	method, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		method.Name = name
	}
	if input.Details != nil {
		details, err := marshalDetails(input.Details)
		if err != nil {
			return nil, err
		}
		method.Details = details
	}
	if input.Active != nil {
		method.Active = *input.Active
	}

	if err := s.db.WithContext(ctx).Save(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

// Delete removes a payment method.
func (s *PaymentMethodService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("payment method service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	method, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.PaymentMethod{}, "id = ?", method.ID).Error
}

func marshalDetails(details map[string]interface{}) (datatypes.JSON, error) {
	if len(details) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("%w: details must be JSON serialisable", ErrValidation)
	}
	return datatypes.JSON(raw), nil
}

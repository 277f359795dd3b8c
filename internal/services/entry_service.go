package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

var (
	// ErrJournalEntryNotFound indicates the requested entry does not exist.
	ErrJournalEntryNotFound = errors.New("entry service: entry not found")
	// ErrEntryLinked rejects deleting an entry still linked to transactions.
	ErrEntryLinked = errors.New("entry service: entry is linked to transactions")
)

// EntryService manages bookkeeping journal entries.
type EntryService struct {
	db *gorm.DB
}

// NewEntryService constructs an entry service.
func NewEntryService(db *gorm.DB) (*EntryService, error) {
	if db == nil {
		return nil, errors.New("entry service: db is required")
	}
	return &EntryService{db: db}, nil
}

// ListEntriesOptions controls entry filtering and pagination.
type ListEntriesOptions struct {
	CompanyID string
	Category  string
	From      *time.Time
	To        *time.Time
	Page      Page
	Sort      Sort
}

// CreateEntryInput captures the fields accepted when posting an entry.
type CreateEntryInput struct {
	CompanyID     string
	Date          time.Time
	Memo          string
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Currency      string
	Category      string
}

// UpdateEntryInput describes mutable entry fields. A nil pointer indicates no change.
type UpdateEntryInput struct {
	Date     *time.Time
	Memo     *string
	Amount   *decimal.Decimal
	Category *string
}

var entrySortColumns = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"category":   "category",
	"created_at": "created_at",
}

// List returns one page of entries plus the total for the filtered scope.
func (s *EntryService) List(ctx context.Context, opts ListEntriesOptions) ([]models.Entry, int64, error) {
	if s == nil {
		return nil, 0, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)
	page := opts.Page.Normalise()

	q := s.db.WithContext(ctx).Model(&models.Entry{})
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if category := strings.TrimSpace(opts.Category); category != "" {
		q = q.Where("category = ?", category)
	}
	if opts.From != nil {
		q = q.Where("date >= ?", *opts.From)
	}
	if opts.To != nil {
		q = q.Where("date < ?", *opts.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Entry
	err := q.Order(opts.Sort.OrderClause(entrySortColumns, "date DESC")).
		Offset(page.Offset).Limit(page.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Get retrieves an entry by identifier.
func (s *EntryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	if s == nil {
		return nil, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var entry models.Entry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create posts a new journal entry.
func (s *EntryService) Create(ctx context.Context, input CreateEntryInput) (*models.Entry, error) {
	if s == nil {
		return nil, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}
	debit := strings.TrimSpace(input.DebitAccount)
	if debit == "" {
		return nil, fmt.Errorf("%w: debit account is required", ErrValidation)
	}
	credit := strings.TrimSpace(input.CreditAccount)
	if credit == "" {
		return nil, fmt.Errorf("%w: credit account is required", ErrValidation)
	}
	if debit == credit {
		return nil, fmt.Errorf("%w: debit and credit accounts must differ", ErrValidation)
	}
	if input.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	entry := models.Entry{
		CompanyID:     companyID,
		Date:          date,
		Memo:          strings.TrimSpace(input.Memo),
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        input.Amount,
		Currency:      normalizeCurrency(input.Currency, "EUR"),
		Category:      strings.ToLower(strings.TrimSpace(input.Category)),
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update applies a partial field merge to an existing entry.
func (s *EntryService) Update(ctx context.Context, id string, input UpdateEntryInput) (*models.Entry, error) {
	if s == nil {
		return nil, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		entry.Date = *input.Date
	}
	if input.Memo != nil {
		entry.Memo = strings.TrimSpace(*input.Memo)
	}
	if input.Amount != nil {
		if input.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
		}
		entry.Amount = *input.Amount
	}
	if input.Category != nil {
		entry.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}

	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry unless transactions still reference it.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var linked int64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("entry_id = ?", entry.ID).Count(&linked).Error; err != nil {
		return err
	}
	if linked > 0 {
		return ErrEntryLinked
	}

	return s.db.WithContext(ctx).Delete(&models.Entry{}, "id = ?", entry.ID).Error
}

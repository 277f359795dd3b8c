package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

var (
	// ErrInvoiceNotFound indicates the requested invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice service: invoice not found")
	// ErrInvoiceNotDraft rejects sending an invoice that already left draft.
	ErrInvoiceNotDraft = errors.New("invoice service: only draft invoices can be sent")
	// ErrInvalidInvoiceStatus rejects an unknown status value.
	ErrInvalidInvoiceStatus = errors.New("invoice service: invalid invoice status")
)

var invoiceStatuses = map[string]bool{
	models.InvoiceStatusDraft:   true,
	models.InvoiceStatusSent:    true,
	models.InvoiceStatusPaid:    true,
	models.InvoiceStatusOverdue: true,
	models.InvoiceStatusVoid:    true,
}

// InvoiceService manages billing documents and their line items.
type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewInvoiceService constructs an invoice service.
func NewInvoiceService(db *gorm.DB) (*InvoiceService, error) {
	if db == nil {
		return nil, errors.New("invoice service: db is required")
	}
	return &InvoiceService{db: db, now: time.Now}, nil
}

// WithClock overrides the service clock. Intended for tests.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	if now != nil {
		s.now = now
	}
	return s
}

// ListInvoicesOptions controls invoice filtering and pagination.
type ListInvoicesOptions struct {
	CompanyID string
	ClientID  string
	Status    string
	DueBefore *time.Time
	DueAfter  *time.Time
	Page      Page
	Sort      Sort
}

// InvoiceItemInput is one billed line submitted on invoice creation.
type InvoiceItemInput struct {
	ProductID   *string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput captures the fields accepted when issuing an invoice.
type CreateInvoiceInput struct {
	CompanyID string
	ClientID  string
	Number    string
	Currency  string
	IssueDate time.Time
	DueDate   time.Time
	Notes     string
	TaxRate   decimal.Decimal // percentage applied to the subtotal
	Items     []InvoiceItemInput
}

// UpdateInvoiceInput describes mutable invoice fields. A nil pointer indicates no change.
type UpdateInvoiceInput struct {
	Number  *string
	DueDate *time.Time
	Notes   *string
}

var invoiceSortColumns = map[string]string{
	"number":     "number",
	"status":     "status",
	"issue_date": "issue_date",
	"due_date":   "due_date",
	"total":      "total",
	"created_at": "created_at",
}

// InvoiceTotals summarises the monetary state of a filtered invoice scope.
type InvoiceTotals struct {
	Count       int64           `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Paid        decimal.Decimal `json:"paid"`
}

// List returns one page of invoices plus the total for the filtered scope.
func (s *InvoiceService) List(ctx context.Context, opts ListInvoicesOptions) ([]models.Invoice, int64, error) {
	if s == nil {
		return nil, 0, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)
	page := opts.Page.Normalise()

	q := s.scopedQuery(ctx, opts)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.Invoice
	err := q.Preload("Client").Preload("Items").
		Order(opts.Sort.OrderClause(invoiceSortColumns, "issue_date DESC")).
		Offset(page.Offset).Limit(page.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (s *InvoiceService) scopedQuery(ctx context.Context, opts ListInvoicesOptions) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if clientID := strings.TrimSpace(opts.ClientID); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if status := strings.TrimSpace(opts.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if opts.DueBefore != nil {
		q = q.Where("due_date < ?", *opts.DueBefore)
	}
	if opts.DueAfter != nil {
		q = q.Where("due_date >= ?", *opts.DueAfter)
	}
	return q
}

// Totals computes outstanding and settled sums for the filtered scope using
// aggregate queries run concurrently, never by scanning pages.
func (s *InvoiceService) Totals(ctx context.Context, opts ListInvoicesOptions) (InvoiceTotals, error) {
	if s == nil {
		return InvoiceTotals{}, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var totals InvoiceTotals
	type sumRow struct {
		Sum decimal.Decimal
	}
	var outstanding, paid sumRow

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.scopedQuery(gctx, opts).Count(&totals.Count).Error
	})
	g.Go(func() error {
		return s.scopedQuery(gctx, opts).
			Select("COALESCE(SUM(total), 0) AS sum").
			Where("status IN ?", []string{models.InvoiceStatusSent, models.InvoiceStatusOverdue}).
			Scan(&outstanding).Error
	})
	g.Go(func() error {
		return s.scopedQuery(gctx, opts).
			Select("COALESCE(SUM(total), 0) AS sum").
			Where("status = ?", models.InvoiceStatusPaid).
			Scan(&paid).Error
	})

	if err := g.Wait(); err != nil {
		return InvoiceTotals{}, err
	}

	totals.Outstanding = outstanding.Sum
	totals.Paid = paid.Sum
	return totals, nil
}

// Get retrieves an invoice by identifier with its client and items.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	if s == nil {
		return nil, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Client").Preload("Items").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// Create issues a new draft invoice, deriving line amounts and document totals
// from the submitted items.
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	if s == nil {
		return nil, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrValidation)
	}
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, fmt.Errorf("%w: number is required", ErrValidation)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	if input.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", ErrValidation)
	}

	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ? AND company_id = ?", clientID, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	items := make([]models.InvoiceItem, 0, len(input.Items))
	subtotal := decimal.Zero
	for i, line := range input.Items {
		description := strings.TrimSpace(line.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: item %d description is required", ErrValidation, i+1)
		}
		if line.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i+1)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d unit price cannot be negative", ErrValidation, i+1)
		}

		amount := line.Quantity.Mul(line.UnitPrice)
		subtotal = subtotal.Add(amount)
		items = append(items, models.InvoiceItem{
			ProductID:   line.ProductID,
			Description: description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      amount,
		})
	}

	taxTotal := subtotal.Mul(input.TaxRate).Div(decimal.NewFromInt(100)).Round(4)

	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = s.now().UTC()
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, 30)
	}

	invoice := models.Invoice{
		CompanyID: companyID,
		ClientID:  clientID,
		Number:    number,
		Status:    models.InvoiceStatusDraft,
		Currency:  normalizeCurrency(input.Currency, "EUR"),
		IssueDate: issueDate,
		DueDate:   dueDate,
		Notes:     strings.TrimSpace(input.Notes),
		Subtotal:  subtotal,
		TaxTotal:  taxTotal,
		Total:     subtotal.Add(taxTotal),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}

	invoice.Items = items
	invoice.Client = &client
	return &invoice, nil
}

// Update applies a partial field merge to an existing invoice.
func (s *InvoiceService) Update(ctx context.Context, id string, input UpdateInvoiceInput) (*models.Invoice, error) {
	if s == nil {
		return nil, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Number != nil {
		number := strings.TrimSpace(*input.Number)
		if number == "" {
			return nil, fmt.Errorf("%w: number is required", ErrValidation)
		}
		invoice.Number = number
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.Notes != nil {
		invoice.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Send transitions a draft invoice out of draft. Only drafts may be sent; a
// draft whose due date already passed lands directly on overdue.
func (s *InvoiceService) Send(ctx context.Context, id string) (*models.Invoice, error) {
	if s == nil {
		return nil, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, ErrInvoiceNotDraft
	}

	now := s.now().UTC()
	invoice.Status = models.InvoiceStatusSent
	if invoice.DueDate.Before(now) {
		invoice.Status = models.InvoiceStatusOverdue
	}
	invoice.SentAt = &now

	if err := s.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// SetStatus moves an invoice to an explicit status, stamping PaidAt when the
// invoice settles.
func (s *InvoiceService) SetStatus(ctx context.Context, id, status string) (*models.Invoice, error) {
	if s == nil {
		return nil, errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	if !invoiceStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInvoiceStatus, status)
	}

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice.Status = status
	if status == models.InvoiceStatusPaid && invoice.PaidAt == nil {
		now := s.now().UTC()
		invoice.PaidAt = &now
	}

	if err := s.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete removes an invoice and its line items.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("invoice service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.InvoiceItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, "id = ?", invoice.ID).Error
	})
}

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

var (
	// ErrTransactionNotFound indicates the requested transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction service: transaction not found")
	// ErrEntryNotFound indicates the referenced bookkeeping entry does not exist.
	ErrEntryNotFound = errors.New("transaction service: entry not found")
	// ErrInvalidCursor rejects a malformed continuation cursor.
	ErrInvalidCursor = errors.New("transaction service: invalid cursor")
)

// TransactionService manages money movements on bank accounts and wallets.
// Listing uses cursor pagination keyed on (occurred_at, id) so imports that
// land mid-scroll never shift the page window.
type TransactionService struct {
	db *gorm.DB
}

// NewTransactionService constructs a transaction service.
func NewTransactionService(db *gorm.DB) (*TransactionService, error) {
	if db == nil {
		return nil, errors.New("transaction service: db is required")
	}
	return &TransactionService{db: db}, nil
}

// ListTransactionsOptions controls transaction filtering and cursor pagination.
type ListTransactionsOptions struct {
	CompanyID     string
	WalletID      string
	BankAccountID string
	Direction     string
	From          *time.Time
	To            *time.Time
	Cursor        string
	Limit         int
}

// TransactionPage is one cursor-paginated slice of transactions.
type TransactionPage struct {
	Transactions []models.Transaction
	NextCursor   string
	HasMore      bool
}

// CreateTransactionInput captures a manually recorded movement.
type CreateTransactionInput struct {
	CompanyID     string
	WalletID      *string
	BankAccountID *string
	Direction     string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	OccurredAt    time.Time
	Metadata      map[string]interface{}
}

type cursorToken struct {
	OccurredAt time.Time `json:"t"`
	ID         string    `json:"id"`
}

func encodeCursor(tx models.Transaction) string {
	raw, err := json.Marshal(cursorToken{OccurredAt: tx.OccurredAt, ID: tx.ID})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (cursorToken, error) {
	var token cursorToken
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return token, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(raw, &token); err != nil {
		return token, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if token.ID == "" {
		return token, ErrInvalidCursor
	}
	return token, nil
}

// List returns one cursor page of transactions, newest first.
func (s *TransactionService) List(ctx context.Context, opts ListTransactionsOptions) (*TransactionPage, error) {
	if s == nil {
		return nil, errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if walletID := strings.TrimSpace(opts.WalletID); walletID != "" {
		q = q.Where("wallet_id = ?", walletID)
	}
	if bankAccountID := strings.TrimSpace(opts.BankAccountID); bankAccountID != "" {
		q = q.Where("bank_account_id = ?", bankAccountID)
	}
	if direction := strings.ToLower(strings.TrimSpace(opts.Direction)); direction != "" {
		if direction != models.TransactionIn && direction != models.TransactionOut {
			return nil, fmt.Errorf("%w: invalid direction %q", ErrValidation, direction)
		}
		q = q.Where("direction = ?", direction)
	}
	if opts.From != nil {
		q = q.Where("occurred_at >= ?", *opts.From)
	}
	if opts.To != nil {
		q = q.Where("occurred_at < ?", *opts.To)
	}

	if cursor := strings.TrimSpace(opts.Cursor); cursor != "" {
		token, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		q = q.Where("occurred_at < ? OR (occurred_at = ? AND id < ?)",
			token.OccurredAt, token.OccurredAt, token.ID)
	}

	// One extra row decides has_more without a count query.
	var transactions []models.Transaction
	err := q.Preload("Entry").
		Order("occurred_at DESC, id DESC").
		Limit(limit + 1).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	page := &TransactionPage{Transactions: transactions}
	if len(transactions) > limit {
		page.Transactions = transactions[:limit]
		page.HasMore = true
		page.NextCursor = encodeCursor(page.Transactions[limit-1])
	}
	return page, nil
}

// Get retrieves a transaction by identifier with its linked entry.
func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	if s == nil {
		return nil, errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var transaction models.Transaction
	err := s.db.WithContext(ctx).Preload("Entry").First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

// Create records a manual transaction.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if s == nil {
		return nil, errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}
	direction := strings.ToLower(strings.TrimSpace(input.Direction))
	if direction != models.TransactionIn && direction != models.TransactionOut {
		return nil, fmt.Errorf("%w: invalid direction %q", ErrValidation, direction)
	}
	if input.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if input.WalletID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", *input.WalletID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrWalletNotFound
		}
	}
	if input.BankAccountID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.BankAccount{}).Where("id = ?", *input.BankAccountID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrBankAccountNotFound
		}
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	var metadata datatypes.JSON
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata must be JSON serialisable", ErrValidation)
		}
		metadata = datatypes.JSON(raw)
	}

	transaction := models.Transaction{
		CompanyID:     companyID,
		WalletID:      input.WalletID,
		BankAccountID: input.BankAccountID,
		Direction:     direction,
		Amount:        input.Amount,
		Currency:      normalizeCurrency(input.Currency, "EUR"),
		Description:   strings.TrimSpace(input.Description),
		OccurredAt:    occurredAt,
		Metadata:      metadata,
	}

	if err := s.db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Link attaches a bookkeeping entry to a transaction. Both sides must exist
// before the reference is written.
func (s *TransactionService) Link(ctx context.Context, transactionID, entryID string) (*models.Transaction, error) {
	if s == nil {
		return nil, errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return nil, fmt.Errorf("%w: entry id is required", ErrValidation)
	}

	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var entry models.Entry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	transaction.EntryID = &entry.ID
	transaction.Entry = &entry

	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("entry_id", entry.ID).Error
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Unlink detaches the bookkeeping entry from a transaction.
func (s *TransactionService) Unlink(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if s == nil {
		return nil, errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	transaction.EntryID = nil
	transaction.Entry = nil

	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("entry_id", nil).Error
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("transaction service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	transaction, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", transaction.ID).Error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/crypto"
)

// ErrBankAccountNotFound indicates the requested bank account does not exist.
var ErrBankAccountNotFound = errors.New("bank account service: bank account not found")

// BankAccountService manages company bank accounts. Account numbers are kept
// AES-GCM encrypted at rest; reads only ever expose the masked tail.
type BankAccountService struct {
	db            *gorm.DB
	encryptionKey []byte
}

// NewBankAccountService constructs a bank account service. The key must be a
// valid AES key (16, 24 or 32 bytes).
func NewBankAccountService(db *gorm.DB, encryptionKey []byte) (*BankAccountService, error) {
	if db == nil {
		return nil, errors.New("bank account service: db is required")
	}
	switch len(encryptionKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("bank account service: encryption key must be 16, 24 or 32 bytes")
	}
	return &BankAccountService{db: db, encryptionKey: encryptionKey}, nil
}

// CreateBankAccountInput captures the fields accepted on creation.
type CreateBankAccountInput struct {
	CompanyID     string
	Name          string
	BankName      string
	Currency      string
	AccountNumber string
	Balance       decimal.Decimal
}

// UpdateBankAccountInput describes mutable fields. A nil pointer indicates no change.
type UpdateBankAccountInput struct {
	Name          *string
	BankName      *string
	Currency      *string
	AccountNumber *string
	Balance       *decimal.Decimal
	Active        *bool
}

// List returns all bank accounts for a company.
func (s *BankAccountService) List(ctx context.Context, companyID string) ([]models.BankAccount, error) {
	if s == nil {
		return nil, errors.New("bank account service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}

	var accounts []models.BankAccount
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("active DESC, name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// Get retrieves a bank account by identifier.
func (s *BankAccountService) Get(ctx context.Context, id string) (*models.BankAccount, error) {
	if s == nil {
		return nil, errors.New("bank account service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var account models.BankAccount
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Create registers a bank account, encrypting the account number at rest.
func (s *BankAccountService) Create(ctx context.Context, input CreateBankAccountInput) (*models.BankAccount, error) {
	if s == nil {
		return nil, errors.New("bank account service: service not initialised")
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
	number := normalizeAccountNumber(input.AccountNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: account number is required", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	enc, err := crypto.Encrypt([]byte(number), s.encryptionKey)
	if err != nil {
		return nil, err
	}

	account := models.BankAccount{
		CompanyID:        companyID,
		Name:             name,
		BankName:         strings.TrimSpace(input.BankName),
		Currency:         normalizeCurrency(input.Currency, "EUR"),
		AccountNumberEnc: enc,
		AccountTail:      accountTail(number),
		Balance:          input.Balance,
		Active:           true,
	}

	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Update applies a partial field merge to an existing bank account.
func (s *BankAccountService) Update(ctx context.Context, id string, input UpdateBankAccountInput) (*models.BankAccount, error) {
	if s == nil {
		return nil, errors.New("bank account service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		account.Name = name
	}
	if input.BankName != nil {
		account.BankName = strings.TrimSpace(*input.BankName)
	}
	if input.Currency != nil {
		account.Currency = normalizeCurrency(*input.Currency, account.Currency)
	}
	if input.AccountNumber != nil {
		number := normalizeAccountNumber(*input.AccountNumber)
		if number == "" {
			return nil, fmt.Errorf("%w: account number is required", ErrValidation)
		}
		enc, err := crypto.Encrypt([]byte(number), s.encryptionKey)
		if err != nil {
			return nil, err
		}
		account.AccountNumberEnc = enc
		account.AccountTail = accountTail(number)
	}
	if input.Balance != nil {
		account.Balance = *input.Balance
	}
	if input.Active != nil {
		account.Active = *input.Active
	}

	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes a bank account. Transactions that referenced it keep their
// rows; the reference is cleared.
func (s *BankAccountService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("bank account service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Transaction{}).
			Where("bank_account_id = ?", account.ID).
			Update("bank_account_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.BankAccount{}, "id = ?", account.ID).Error
	})
}

// RevealAccountNumber decrypts the stored account number for an explicit
// operator request. Never used on list or read paths.
func (s *BankAccountService) RevealAccountNumber(ctx context.Context, id string) (string, error) {
	if s == nil {
		return "", errors.New("bank account service: service not initialised")
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	plain, err := crypto.Decrypt(account.AccountNumberEnc, s.encryptionKey)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func normalizeAccountNumber(number string) string {
	return strings.Join(strings.Fields(number), "")
}

func accountTail(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

var (
	// ErrWalletNotFound indicates the requested wallet does not exist.
	ErrWalletNotFound = errors.New("wallet service: wallet not found")
	// ErrWalletExists rejects tracking the same address twice for one company.
	ErrWalletExists = errors.New("wallet service: address already tracked for company")
)

var walletChains = map[string]string{
	models.ChainEthereum: "ETH",
	models.ChainNeo:      "NEO",
	models.ChainBitcoin:  "BTC",
}

// WalletService manages on-chain addresses tracked for companies.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService constructs a wallet service.
func NewWalletService(db *gorm.DB) (*WalletService, error) {
	if db == nil {
		return nil, errors.New("wallet service: db is required")
	}
	return &WalletService{db: db}, nil
}

// CreateWalletInput captures the fields accepted when tracking a wallet.
type CreateWalletInput struct {
	CompanyID string
	Name      string
	Chain     string
	Address   string
}

// UpdateWalletInput describes mutable fields. A nil pointer indicates no change.
type UpdateWalletInput struct {
	Name   *string
	Active *bool
}

// SupportedChains lists the chains transactions can be imported from.
func SupportedChains() []string {
	chains := make([]string, 0, len(walletChains))
	for chain := range walletChains {
		chains = append(chains, chain)
	}
	return chains
}

// List returns all wallets for a company.
func (s *WalletService) List(ctx context.Context, companyID string) ([]models.Wallet, error) {
	if s == nil {
		return nil, errors.New("wallet service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrValidation)
	}

	var wallets []models.Wallet
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("active DESC, name ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// Get retrieves a wallet by identifier.
func (s *WalletService) Get(ctx context.Context, id string) (*models.Wallet, error) {
	if s == nil {
		return nil, errors.New("wallet service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var wallet models.Wallet
	if err := s.db.WithContext(ctx).First(&wallet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// Create tracks a new on-chain address for a company.
func (s *WalletService) Create(ctx context.Context, input CreateWalletInput) (*models.Wallet, error) {
	if s == nil {
		return nil, errors.New("wallet service: service not initialised")
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
	chain := strings.ToLower(strings.TrimSpace(input.Chain))
	currency, ok := walletChains[chain]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported chain %q (supported: %s)",
			ErrValidation, chain, strings.Join(SupportedChains(), ", "))
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("company_id = ? AND chain = ? AND address = ?", companyID, chain, address).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrWalletExists
	}

	wallet := models.Wallet{
		CompanyID: companyID,
		Name:      name,
		Chain:     chain,
		Address:   address,
		Currency:  currency,
		Active:    true,
	}

	if err := s.db.WithContext(ctx).Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Update applies a partial field merge to an existing wallet. Chain and
// address are immutable; track a new wallet instead.
func (s *WalletService) Update(ctx context.Context, id string, input UpdateWalletInput) (*models.Wallet, error) {
	if s == nil {
		return nil, errors.New("wallet service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	wallet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		wallet.Name = name
	}
	if input.Active != nil {
		wallet.Active = *input.Active
	}

	if err := s.db.WithContext(ctx).Save(wallet).Error; err != nil {
		return nil, err
	}
	return wallet, nil
}

// Delete stops tracking a wallet. Imported transactions keep their rows with
// the wallet reference cleared.
func (s *WalletService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return errors.New("wallet service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	wallet, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Transaction{}).
			Where("wallet_id = ?", wallet.ID).
			Update("wallet_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Wallet{}, "id = ?", wallet.ID).Error
	})
}

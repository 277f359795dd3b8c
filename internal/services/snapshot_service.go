package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/localstore"
)

// SnapshotService mirrors slow-changing reference data into the snapshot
// store so attached clients can render without a round trip. Each sync
// replaces the stored array wholesale.
type SnapshotService struct {
	db    *gorm.DB
	store *localstore.Store
}

// NewSnapshotService constructs a snapshot service.
func NewSnapshotService(db *gorm.DB, store *localstore.Store) (*SnapshotService, error) {
	if db == nil {
		return nil, errors.New("snapshot service: db is required")
	}
	if store == nil {
		return nil, errors.New("snapshot service: store is required")
	}
	return &SnapshotService{db: db, store: store}, nil
}

// SyncCompanies replaces the company snapshot with the current active set.
func (s *SnapshotService) SyncCompanies(ctx context.Context) error {
	if s == nil {
		return errors.New("snapshot service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var companies []models.Company
	err := s.db.WithContext(ctx).
		Where("status = ?", models.CompanyStatusActive).
		Order("LOWER(name)").
		Find(&companies).Error
	if err != nil {
		return err
	}
	return s.store.Write(localstore.KeyCompanies, companies)
}

// SyncBankAccounts replaces the bank account snapshot with all active accounts.
func (s *SnapshotService) SyncBankAccounts(ctx context.Context) error {
	if s == nil {
		return errors.New("snapshot service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var accounts []models.BankAccount
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("LOWER(name)").
		Find(&accounts).Error
	if err != nil {
		return err
	}
	return s.store.Write(localstore.KeyBankAccounts, accounts)
}

// SyncWallets replaces the wallet snapshot with all active wallets.
func (s *SnapshotService) SyncWallets(ctx context.Context) error {
	if s == nil {
		return errors.New("snapshot service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var wallets []models.Wallet
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("LOWER(name)").
		Find(&wallets).Error
	if err != nil {
		return err
	}
	return s.store.Write(localstore.KeyDigitalWallets, wallets)
}

// SyncAll refreshes every snapshot concurrently. Registered as a cache warmer
// so a warm-up dispatch repopulates the mirrors too.
func (s *SnapshotService) SyncAll(ctx context.Context) error {
	if s == nil {
		return errors.New("snapshot service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.SyncCompanies(gctx) })
	g.Go(func() error { return s.SyncBankAccounts(gctx) })
	g.Go(func() error { return s.SyncWallets(gctx) })
	return g.Wait()
}

package chain

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/metrics"
)

// ImportResult summarises one wallet import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer pulls address transactions from a block explorer and persists them.
// Re-running an import is idempotent: rows are keyed by (wallet, hash) and
// already-known hashes are skipped.
type Importer struct {
	db     *gorm.DB
	client Client
	log    *zap.Logger
}

// NewImporter constructs an importer.
func NewImporter(db *gorm.DB, client Client) (*Importer, error) {
	if db == nil {
		return nil, errors.New("chain: db is required")
	}
	if client == nil {
		return nil, errors.New("chain: client is required")
	}
	return &Importer{db: db, client: client, log: logger.WithModule("chain")}, nil
}

// ImportWallet fetches and persists new transactions for a wallet. Only
// movements after the newest already-imported row are requested.
func (i *Importer) ImportWallet(ctx context.Context, wallet *models.Wallet) (*ImportResult, error) {
	if i == nil {
		return nil, errors.New("chain: importer not initialised")
	}
	if wallet == nil {
		return nil, errors.New("chain: wallet is required")
	}

	since, err := i.lastImportedAt(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	fetched, err := i.client.AddressTransactions(ctx, wallet.Chain, wallet.Address, since)
	if err != nil {
		metrics.ChainImports.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &ImportResult{}
	for _, tx := range fetched {
		known, err := i.hashKnown(ctx, wallet.ID, tx.Hash)
		if err != nil {
			return result, err
		}
		if known {
			result.Skipped++
			metrics.ChainImports.WithLabelValues("skipped").Inc()
			continue
		}

		hash := tx.Hash
		currency := tx.Currency
		if currency == "" {
			currency = wallet.Currency
		}

		row := models.Transaction{
			CompanyID:   wallet.CompanyID,
			WalletID:    &wallet.ID,
			Hash:        &hash,
			Direction:   tx.Direction,
			Amount:      tx.Amount,
			Currency:    currency,
			Description: "imported from " + wallet.Chain,
			OccurredAt:  tx.OccurredAt,
		}
		if err := i.db.WithContext(ctx).Create(&row).Error; err != nil {
			metrics.ChainImports.WithLabelValues("failed").Inc()
			return result, err
		}

		result.Imported++
		metrics.ChainImports.WithLabelValues("imported").Inc()
	}

	i.log.Info("wallet import finished",
		zap.String("wallet_id", wallet.ID),
		zap.String("chain", wallet.Chain),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (i *Importer) lastImportedAt(ctx context.Context, walletID string) (time.Time, error) {
	var last models.Transaction
	err := i.db.WithContext(ctx).
		Where("wallet_id = ? AND hash IS NOT NULL", walletID).
		Order("occurred_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return last.OccurredAt, nil
}

func (i *Importer) hashKnown(ctx context.Context, walletID, hash string) (bool, error) {
	var count int64
	err := i.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("wallet_id = ? AND hash = ?", walletID, hash).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

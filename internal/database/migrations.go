package database

import (
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Client{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.PaymentMethod{},
		&models.BankAccount{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Entry{},
		&models.CurrencyRate{},
		&models.CacheEntry{},
	)
}

// SeedData backfills defaults that older databases may be missing. It is
// idempotent and safe to run on every start.
func SeedData(db *gorm.DB) error {
	// Every company gets a cash payment method so invoices can always be settled.
	var companies []models.Company
	if err := db.Select("id").Find(&companies).Error; err != nil {
		return err
	}

	for _, company := range companies {
		var count int64
		if err := db.Model(&models.PaymentMethod{}).
			Where("company_id = ? AND kind = ?", company.ID, models.PaymentMethodCash).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		method := models.PaymentMethod{
			CompanyID: company.ID,
			Name:      "Cash",
			Kind:      models.PaymentMethodCash,
			Active:    true,
		}
		if err := db.Create(&method).Error; err != nil {
			return err
		}
	}

	return nil
}

package models

import "github.com/shopspring/decimal"

// Product is a sellable good or service priced in the company currency.
type Product struct {
	BaseModel

	CompanyID   string          `gorm:"type:uuid;not null;index" json:"company_id"`
	Name        string          `gorm:"not null;index" json:"name"`
	SKU         string          `gorm:"index" json:"sku"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Currency    string          `gorm:"default:EUR" json:"currency"`
	Active      bool            `gorm:"default:true" json:"active"`
}

package models

import "github.com/shopspring/decimal"

// InvoiceItem is a single billed line on an invoice.
type InvoiceItem struct {
	BaseModel

	InvoiceID   string  `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID   *string `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description string  `gorm:"not null" json:"description"`

	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

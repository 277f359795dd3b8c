package models

import "gorm.io/datatypes"

// Payment method kinds accepted on invoices.
const (
	PaymentMethodBank   = "bank_transfer"
	PaymentMethodCard   = "card"
	PaymentMethodCash   = "cash"
	PaymentMethodCrypto = "crypto"
)

// PaymentMethod describes how a company accepts payment.
type PaymentMethod struct {
	BaseModel

	CompanyID string         `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Kind      string         `gorm:"not null;index" json:"kind"`
	Details   datatypes.JSON `json:"details"`
	Active    bool           `gorm:"default:true" json:"active"`
}

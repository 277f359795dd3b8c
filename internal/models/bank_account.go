package models

import "github.com/shopspring/decimal"

// BankAccount tracks a company bank balance. The account number is stored
// AES-GCM encrypted; only the masked tail is exposed on read.
type BankAccount struct {
	BaseModel

	CompanyID        string          `gorm:"type:uuid;not null;index" json:"company_id"`
	Name             string          `gorm:"not null" json:"name"`
	BankName         string          `json:"bank_name"`
	Currency         string          `gorm:"default:EUR" json:"currency"`
	AccountNumberEnc string          `json:"-"`
	AccountTail      string          `json:"account_tail"`
	Balance          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	Active           bool            `gorm:"default:true" json:"active"`
}

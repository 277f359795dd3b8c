package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a bookkeeping journal entry.
type Entry struct {
	BaseModel

	CompanyID     string          `gorm:"type:uuid;not null;index" json:"company_id"`
	Date          time.Time       `gorm:"index" json:"date"`
	Memo          string          `json:"memo"`
	DebitAccount  string          `gorm:"not null" json:"debit_account"`
	CreditAccount string          `gorm:"not null" json:"credit_account"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Currency      string          `gorm:"default:EUR" json:"currency"`
	Category      string          `gorm:"index" json:"category"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction directions.
const (
	TransactionIn  = "in"
	TransactionOut = "out"
)

// Transaction is a money movement on a bank account or wallet. Imported
// on-chain transactions carry their hash; Hash is unique per wallet so
// re-imports are idempotent.
type Transaction struct {
	BaseModel

	CompanyID     string          `gorm:"type:uuid;not null;index" json:"company_id"`
	WalletID      *string         `gorm:"type:uuid;index:idx_tx_wallet_hash,priority:1" json:"wallet_id,omitempty"`
	BankAccountID *string         `gorm:"type:uuid;index" json:"bank_account_id,omitempty"`
	EntryID       *string         `gorm:"type:uuid;index" json:"entry_id,omitempty"`
	Hash          *string         `gorm:"index:idx_tx_wallet_hash,priority:2" json:"hash,omitempty"`
	Direction     string          `gorm:"not null;index" json:"direction"`
	Amount        decimal.Decimal `gorm:"type:decimal(30,8);default:0" json:"amount"`
	Currency      string          `gorm:"default:EUR" json:"currency"`
	Description   string          `json:"description"`
	OccurredAt    time.Time       `gorm:"index" json:"occurred_at"`
	Metadata      datatypes.JSON  `json:"metadata"`

	Entry *Entry `gorm:"foreignKey:EntryID" json:"entry,omitempty"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. Send is only legal from draft; a draft sent past its due
// date lands directly on overdue.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoid    = "void"
)

// Invoice is a billing document issued by a company to one of its clients.
type Invoice struct {
	BaseModel

	CompanyID string     `gorm:"type:uuid;not null;index" json:"company_id"`
	ClientID  string     `gorm:"type:uuid;not null;index" json:"client_id"`
	Number    string     `gorm:"not null;index" json:"number"`
	Status    string     `gorm:"default:draft;index" json:"status"`
	Currency  string     `gorm:"default:EUR" json:"currency"`
	IssueDate time.Time  `json:"issue_date"`
	DueDate   time.Time  `gorm:"index" json:"due_date"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Notes     string     `json:"notes"`

	Subtotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_total"`
	Total    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`

	Client *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

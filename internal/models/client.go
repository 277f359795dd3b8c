package models

// Client is a customer of a company, the counterparty on invoices.
type Client struct {
	BaseModel

	CompanyID    string `gorm:"type:uuid;not null;index" json:"company_id"`
	Name         string `gorm:"not null;index" json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	TaxID        string `json:"tax_id"`
	PaymentTerms string `gorm:"default:net_30" json:"payment_terms"`
	Status       string `gorm:"default:active" json:"status"`

	Invoices []Invoice `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
}

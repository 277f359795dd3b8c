package models

import (
	"gorm.io/datatypes"
)

// Company statuses used by onboarding and statistics.
const (
	CompanyStatusActive  = "active"
	CompanyStatusPassive = "passive"
)

// Company is the tenant boundary: every bookkeeping record hangs off one company.
type Company struct {
	BaseModel

	Name         string         `gorm:"not null;index" json:"name"`
	LegalName    string         `json:"legal_name"`
	TaxID        string         `gorm:"index" json:"tax_id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Website      string         `json:"website"`
	LogoURL      string         `json:"logo_url"`
	Industry     string         `gorm:"index" json:"industry"`
	PaymentTerms string         `gorm:"default:net_30" json:"payment_terms"`
	Status       string         `gorm:"default:active;index" json:"status"`
	BaseCurrency string         `gorm:"default:EUR" json:"base_currency"`
	OwnerUserID  string         `gorm:"type:uuid;index" json:"owner_user_id"`
	Metadata     datatypes.JSON `json:"metadata"`

	Clients  []Client  `gorm:"foreignKey:CompanyID" json:"clients,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:CompanyID" json:"invoices,omitempty"`
	Products []Product `gorm:"foreignKey:CompanyID" json:"products,omitempty"`
}

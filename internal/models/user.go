package models

// User is the account holder owning one or more companies.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Companies []Company `gorm:"foreignKey:OwnerUserID" json:"companies,omitempty"`
}

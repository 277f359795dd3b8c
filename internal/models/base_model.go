package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the identity and bookkeeping columns shared by every
// persisted row. IDs are UUID strings so they survive JSON round-trips
// and cross-database moves without a numeric sequence.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not choose one.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

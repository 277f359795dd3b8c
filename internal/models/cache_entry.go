package models

import "time"

// CacheEntry backs the database cache store used when no in-process store fits.
type CacheEntry struct {
	BaseModel

	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// Expired reports whether the entry has lapsed; a zero ExpiresAt never does.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

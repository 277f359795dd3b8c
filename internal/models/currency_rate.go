package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate stores one daily quote per (base, quote) pair.
type CurrencyRate struct {
	BaseModel

	Base   string          `gorm:"size:8;not null;uniqueIndex:idx_rate_pair_day,priority:1" json:"base"`
	Quote  string          `gorm:"size:8;not null;uniqueIndex:idx_rate_pair_day,priority:2" json:"quote"`
	Day    time.Time       `gorm:"not null;uniqueIndex:idx_rate_pair_day,priority:3" json:"day"`
	Rate   decimal.Decimal `gorm:"type:decimal(24,10);not null" json:"rate"`
	Source string          `json:"source"`
}

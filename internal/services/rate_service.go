package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finbooks/finbooks/internal/models"
)

// ErrRateNotFound indicates no stored quote exists for the requested pair.
var ErrRateNotFound = errors.New("rate service: rate not found")

// RateService stores one daily currency quote per pair.
type RateService struct {
	db *gorm.DB
}

// NewRateService constructs a rate service.
func NewRateService(db *gorm.DB) (*RateService, error) {
	if db == nil {
		return nil, errors.New("rate service: db is required")
	}
	return &RateService{db: db}, nil
}

// UpsertRateInput captures one quoted rate for a day.
type UpsertRateInput struct {
	Base   string
	Quote  string
	Day    time.Time
	Rate   decimal.Decimal
	Source string
}

// Upsert writes a rate, replacing the existing row for the same pair and day.
func (s *RateService) Upsert(ctx context.Context, input UpsertRateInput) (*models.CurrencyRate, error) {
	if s == nil {
		return nil, errors.New("rate service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	base := strings.ToUpper(strings.TrimSpace(input.Base))
	quote := strings.ToUpper(strings.TrimSpace(input.Quote))
	if base == "" || quote == "" {
		return nil, fmt.Errorf("%w: base and quote are required", ErrValidation)
	}
	if base == quote {
		return nil, fmt.Errorf("%w: base and quote must differ", ErrValidation)
	}
	if input.Rate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrValidation)
	}

	day := input.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}
	day = day.UTC().Truncate(24 * time.Hour)

	rate := models.CurrencyRate{
		Base:   base,
		Quote:  quote,
		Day:    day,
		Rate:   input.Rate,
		Source: strings.TrimSpace(input.Source),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base"}, {Name: "quote"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "source", "updated_at"}),
	}).Create(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// Latest returns the most recent stored quote for a pair.
func (s *RateService) Latest(ctx context.Context, base, quote string) (*models.CurrencyRate, error) {
	if s == nil {
		return nil, errors.New("rate service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return nil, fmt.Errorf("%w: base and quote are required", ErrValidation)
	}

	var rate models.CurrencyRate
	err := s.db.WithContext(ctx).
		Where("base = ? AND quote = ?", base, quote).
		Order("day DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// History returns stored quotes for a pair within [from, to), newest first.
func (s *RateService) History(ctx context.Context, base, quote string, from, to time.Time) ([]models.CurrencyRate, error) {
	if s == nil {
		return nil, errors.New("rate service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return nil, fmt.Errorf("%w: base and quote are required", ErrValidation)
	}

	q := s.db.WithContext(ctx).Where("base = ? AND quote = ?", base, quote)
	if !from.IsZero() {
		q = q.Where("day >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("day < ?", to.UTC())
	}

	var rates []models.CurrencyRate
	if err := q.Order("day DESC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Convert applies the latest stored quote for the pair to an amount.
func (s *RateService) Convert(ctx context.Context, base, quote string, amount decimal.Decimal) (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, errors.New("rate service: service not initialised")
	}

	if strings.EqualFold(strings.TrimSpace(base), strings.TrimSpace(quote)) {
		return amount, nil
	}

	rate, err := s.Latest(ctx, base, quote)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate.Rate), nil
}

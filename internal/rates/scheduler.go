package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/metrics"
)

// Pair is one base/quote currency pair tracked by the scheduler.
type Pair struct {
	Base  string
	Quote string
}

func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// ParsePairs parses "EUR/USD" style pair specs.
func ParsePairs(specs []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(strings.TrimSpace(spec), "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("rates: invalid pair %q, expected BASE/QUOTE", spec)
		}
		base := strings.ToUpper(strings.TrimSpace(parts[0]))
		quote := strings.ToUpper(strings.TrimSpace(parts[1]))
		if base == "" || quote == "" || base == quote {
			return nil, fmt.Errorf("rates: invalid pair %q", spec)
		}
		pairs = append(pairs, Pair{Base: base, Quote: quote})
	}
	return pairs, nil
}

// Scheduler refreshes tracked currency pairs on a cron schedule and stores
// the quotes through the rate service.
type Scheduler struct {
	client   QuoteClient
	rates    *services.RateService
	pairs    []Pair
	schedule string
	cron     *cron.Cron
	log      *zap.Logger
}

// NewScheduler constructs a rate refresh scheduler. The schedule uses
// standard five-field cron syntax.
func NewScheduler(client QuoteClient, rates *services.RateService, pairs []Pair, schedule string) (*Scheduler, error) {
	if client == nil {
		return nil, errors.New("rates: quote client is required")
	}
	if rates == nil {
		return nil, errors.New("rates: rate service is required")
	}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = "0 6 * * *"
	}

	return &Scheduler{
		client:   client,
		rates:    rates,
		pairs:    pairs,
		schedule: schedule,
		cron:     cron.New(),
		log:      logger.WithModule("rates"),
	}, nil
}

// Start registers the cron job and begins running refreshes in the background.
func (s *Scheduler) Start() error {
	if s == nil {
		return errors.New("rates: scheduler not initialised")
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RefreshAll(ctx); err != nil {
			s.log.Warn("scheduled rate refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("rates: register schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("rate scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("pairs", len(s.pairs)),
	)
	return nil
}

// Stop halts the scheduler and waits for any running refresh to finish.
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RefreshAll fetches and stores a fresh quote for every tracked pair. Pairs
// fail independently; the first error is reported after all are attempted.
func (s *Scheduler) RefreshAll(ctx context.Context) error {
	if s == nil {
		return errors.New("rates: scheduler not initialised")
	}

	var firstErr error
	for _, pair := range s.pairs {
		if err := s.refreshPair(ctx, pair); err != nil {
			metrics.RateRefreshes.WithLabelValues("failure").Inc()
			s.log.Warn("rate refresh failed",
				zap.String("pair", pair.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.RateRefreshes.WithLabelValues("success").Inc()
	}
	return firstErr
}

func (s *Scheduler) refreshPair(ctx context.Context, pair Pair) error {
	quote, err := s.client.Quote(ctx, pair.Base, pair.Quote)
	if err != nil {
		return err
	}

	_, err = s.rates.Upsert(ctx, services.UpsertRateInput{
		Base:   pair.Base,
		Quote:  pair.Quote,
		Rate:   quote,
		Source: "scheduler",
	})
	return err
}

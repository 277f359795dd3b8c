package cache

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/metrics"
)

// Tag identifies which caches a mutation affected.
type Tag string

// Valid invalidation tags.
const (
	TagCompany         Tag = "company"
	TagCompanyList     Tag = "company-list"
	TagCompanyStats    Tag = "company-stats"
	TagSearch          Tag = "search"
	TagCalendar        Tag = "calendar"
	TagNotes           Tag = "notes"
	TagCompanyMutation Tag = "company-mutation"
	TagAll             Tag = "all"
	TagWarmUp          Tag = "warm-up"
)

var validTags = []Tag{
	TagCompany, TagCompanyList, TagCompanyStats, TagSearch, TagCalendar,
	TagNotes, TagCompanyMutation, TagAll, TagWarmUp,
}

// Key prefixes per cache category.
const (
	prefixCompany     = "company:"
	prefixCompanyList = "company-list:"
	prefixSearch      = "search:"
	prefixCalendar    = "calendar:"
	prefixNotes       = "notes:"
)

// Result reports what an invalidation did: a removed-entry count where the
// action is countable, a success flag where it is not (stats clear, warm-up).
type Result struct {
	Removed int64 `json:"removed"`
	OK      bool  `json:"ok"`
}

// Warmer proactively repopulates a commonly-read cache.
type Warmer func(ctx context.Context) error

// Dispatcher maps mutation tags to the cache-clearing actions they require.
type Dispatcher struct {
	store   Store
	stats   *StatsCache
	warmers []Warmer
	log     *zap.Logger
}

// NewDispatcher wires the dispatcher to the keyed store and statistics cache.
func NewDispatcher(store Store, stats *StatsCache) *Dispatcher {
	return &Dispatcher{
		store: store,
		stats: stats,
		log:   logger.WithModule("cache-invalidation"),
	}
}

// RegisterWarmer adds a repopulation hook run by the warm-up tag.
func (d *Dispatcher) RegisterWarmer(w Warmer) {
	if w != nil {
		d.warmers = append(d.warmers, w)
	}
}

// CompanyKey builds the keyed-store key for a single company's cached record.
func CompanyKey(companyID string) string {
	return prefixCompany + companyID
}

// Dispatch performs the invalidation action(s) for tag. Unknown tags are
// rejected with an error naming the valid set and clear nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, tag Tag, target string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target = strings.TrimSpace(target)

	result, err := d.dispatch(ctx, tag, target)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.CacheInvalidations.WithLabelValues(string(tag), outcome).Inc()
	return result, err
}

// DispatchAsync runs Dispatch on a fresh goroutine and logs failures. This is
// the fire-and-forget entry point used after mutations: the primary response
// never waits on, or fails because of, cache invalidation. At most once, no
// retries.
func (d *Dispatcher) DispatchAsync(tag Tag, target string) {
	go func() {
		if _, err := d.Dispatch(context.Background(), tag, target); err != nil {
			d.log.Warn("cache invalidation failed",
				zap.String("tag", string(tag)),
				zap.String("target", target),
				zap.Error(err),
			)
		}
	}()
}

func (d *Dispatcher) dispatch(ctx context.Context, tag Tag, target string) (Result, error) {
	switch tag {
	case TagCompany:
		return d.clearPrefix(ctx, prefixCompany+target)

	case TagCompanyList:
		return d.clearPrefix(ctx, prefixCompanyList)

	case TagCompanyStats:
		d.stats.Clear()
		return Result{OK: true}, nil

	case TagSearch:
		return d.clearPrefix(ctx, prefixSearch+target)

	case TagCalendar:
		return d.clearPrefix(ctx, prefixCalendar+target)

	case TagNotes:
		return d.clearPrefix(ctx, prefixNotes+target)

	case TagCompanyMutation:
		return d.companyMutation(ctx, target)

	case TagAll:
		return d.flushAll(ctx)

	case TagWarmUp:
		return d.warmUp(ctx)

	default:
		return Result{}, fmt.Errorf("unknown invalidation tag %q (valid tags: %s)", tag, tagList())
	}
}

// companyMutation invalidates the company's own entry, the company lists and
// the statistics cache, in that order. Best effort: a failed step is logged
// and the remaining steps still run.
func (d *Dispatcher) companyMutation(ctx context.Context, companyID string) (Result, error) {
	total := Result{OK: true}

	steps := []struct {
		tag    Tag
		target string
	}{
		{TagCompany, companyID},
		{TagCompanyList, ""},
		{TagCompanyStats, ""},
	}

	for _, step := range steps {
		res, err := d.dispatch(ctx, step.tag, step.target)
		if err != nil {
			total.OK = false
			d.log.Warn("company-mutation sub-invalidation failed",
				zap.String("tag", string(step.tag)),
				zap.String("target", step.target),
				zap.Error(err),
			)
			continue
		}
		total.Removed += res.Removed
	}

	return total, nil
}

// flushAll is the emergency full flush across every cache category.
func (d *Dispatcher) flushAll(ctx context.Context) (Result, error) {
	total := Result{OK: true}

	for _, prefix := range []string{prefixCompany, prefixCompanyList, prefixSearch, prefixCalendar, prefixNotes} {
		res, err := d.clearPrefix(ctx, prefix)
		if err != nil {
			total.OK = false
			d.log.Warn("full flush failed for prefix", zap.String("prefix", prefix), zap.Error(err))
			continue
		}
		total.Removed += res.Removed
	}

	d.stats.Clear()
	return total, nil
}

func (d *Dispatcher) warmUp(ctx context.Context) (Result, error) {
	ok := true
	for _, warmer := range d.warmers {
		if err := warmer(ctx); err != nil {
			ok = false
			d.log.Warn("cache warm-up step failed", zap.Error(err))
		}
	}
	return Result{OK: ok}, nil
}

func (d *Dispatcher) clearPrefix(ctx context.Context, prefix string) (Result, error) {
	removed, err := d.store.DeletePrefix(ctx, prefix)
	if err != nil {
		return Result{}, err
	}
	return Result{Removed: removed, OK: true}, nil
}

func tagList() string {
	names := make([]string, len(validTags))
	for i, tag := range validTags {
		names[i] = string(tag)
	}
	return strings.Join(names, ", ")
}

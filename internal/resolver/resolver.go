// Package resolver answers holiday queries by consulting the cache and, on a
// miss, the ranked sources one after another until one succeeds.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/hu-holidays/internal/cache"
	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/metrics"
	"github.com/username/hu-holidays/internal/sources"
)

// ErrAllSourcesExhausted is matched by every ExhaustedError
var ErrAllSourcesExhausted = errors.New("all sources exhausted")

// Attempt records one failed source invocation
type Attempt struct {
	Source   string        `json:"source"`
	Kind     sources.Kind  `json:"kind"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

// ExhaustedError is returned when every selected source failed
type ExhaustedError struct {
	Year     int
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s (%s)", a.Source, a.Kind, a.Error)
	}
	return fmt.Sprintf("all sources exhausted for %d: %s", e.Year, strings.Join(parts, "; "))
}

// Is matches ErrAllSourcesExhausted
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllSourcesExhausted
}

// Resolver implements the cache-then-fallback resolution
type Resolver struct {
	registry *sources.Registry
	store    cache.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a Resolver. m may be nil.
func New(registry *sources.Registry, store cache.Store, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		store:    store,
		metrics:  m,
		logger:   logger,
	}
}

// Registry returns the source catalog
func (r *Resolver) Registry() *sources.Registry {
	return r.registry
}

// Resolve returns the holidays and weekend workdays of year.
//
// A live cache entry is returned without touching any source. Otherwise the
// selected sources are tried in rank order and the first one producing at
// least one holiday wins and is cached. Cancellation stops the chain and
// nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, year int) (holiday.YearResult, error) {
	started := time.Now()

	if result, ok := r.store.Get(ctx, year); ok {
		r.metrics.RecordCacheLookup(true)
		r.metrics.ObserveResolve(metrics.OutcomeCacheHit, time.Since(started))
		r.logger.Debug("Using cached holidays",
			zap.Int("year", year),
			zap.String("source", result.Source.Name))
		return result, nil
	}
	r.metrics.RecordCacheLookup(false)

	return r.fetch(ctx, year, started)
}

// fetch walks the fallback chain for year. The cached entry is replaced only
// when a source succeeds.
func (r *Resolver) fetch(ctx context.Context, year int, started time.Time) (holiday.YearResult, error) {
	logger := r.logger.With(
		zap.String("resolution_id", uuid.NewString()),
		zap.Int("year", year))

	candidates := sources.Select(year, r.registry)
	logger.Info("Resolving holidays from sources", zap.Int("candidates", len(candidates)))

	var attempts []Attempt
	for i, adapter := range candidates {
		if err := ctx.Err(); err != nil {
			return r.canceled(logger, year, started, err)
		}

		fetchStart := time.Now()
		result, err := adapter.Fetch(ctx, year)
		if err == nil && result.TotalHolidays == 0 {
			err = &sources.FetchError{Source: adapter.Name(), Year: year, Kind: sources.KindParseFailure, Err: holiday.ErrNoHolidays}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return r.canceled(logger, year, started, ctxErr)
			}

			kind, ok := sources.KindOf(err)
			if !ok {
				kind = sources.KindUnreachable
			}
			attempts = append(attempts, Attempt{
				Source:   adapter.Name(),
				Kind:     kind,
				Error:    err.Error(),
				Duration: time.Since(fetchStart),
			})
			r.metrics.RecordAttempt(adapter.Name(), outcomeOf(kind))

			logger.Warn("Source failed, falling back to next",
				zap.String("source", adapter.Name()),
				zap.Int("attempt", i+1),
				zap.String("kind", string(kind)),
				zap.Error(err))
			continue
		}

		if err := ctx.Err(); err != nil {
			return r.canceled(logger, year, started, err)
		}
		r.metrics.RecordAttempt(adapter.Name(), metrics.OutcomeSuccess)

		if err := r.store.Put(ctx, year, result); err != nil {
			logger.Warn("Failed to cache holidays", zap.Error(err))
		}

		r.metrics.ObserveResolve(metrics.OutcomeSuccess, time.Since(started))
		logger.Info("Resolved holidays",
			zap.String("source", adapter.Name()),
			zap.Int("attempt", i+1),
			zap.Int("holidays", result.TotalHolidays),
			zap.Int("weekend_workdays", result.TotalWeekendWorkdays),
			zap.Duration("duration", time.Since(started)))
		return result, nil
	}

	r.metrics.ObserveResolve(metrics.OutcomeExhausted, time.Since(started))
	logger.Error("All sources exhausted", zap.Int("attempts", len(attempts)))

	return holiday.YearResult{}, errors.WithHint(
		&ExhaustedError{Year: year, Attempts: attempts},
		"Every source failed. Check network access to the holiday sites, retry later, "+
			"or enable sources.statutory_fallback to use the computed calendar.")
}

func outcomeOf(kind sources.Kind) string {
	switch kind {
	case sources.KindUnsupported:
		return metrics.OutcomeUnsupported
	case sources.KindParseFailure:
		return metrics.OutcomeParseFailure
	default:
		return metrics.OutcomeUnreachable
	}
}

func (r *Resolver) canceled(logger *zap.Logger, year int, started time.Time, err error) (holiday.YearResult, error) {
	r.metrics.ObserveResolve(metrics.OutcomeCanceled, time.Since(started))
	logger.Info("Resolution canceled", zap.Error(err))
	return holiday.YearResult{}, errors.Wrapf(err, "resolving %d", year)
}

// Holidays returns only the holidays of year
func (r *Resolver) Holidays(ctx context.Context, year int) ([]holiday.Holiday, error) {
	result, err := r.Resolve(ctx, year)
	if err != nil {
		return nil, err
	}
	return result.Holidays, nil
}

// WeekendWorkdays returns only the weekend workdays of year
func (r *Resolver) WeekendWorkdays(ctx context.Context, year int) ([]holiday.WeekendWorkday, error) {
	result, err := r.Resolve(ctx, year)
	if err != nil {
		return nil, err
	}
	return result.WeekendWorkdays, nil
}

// Check classifies a single date
func (r *Resolver) Check(ctx context.Context, d holiday.Date) (holiday.DayStatus, error) {
	result, err := r.Resolve(ctx, d.Year)
	if err != nil {
		return holiday.DayStatus{}, err
	}
	return holiday.Classify(result, d), nil
}

// Refresh resolves year from the sources, ignoring the cache. A failed refresh
// leaves the previous entry in place.
func (r *Resolver) Refresh(ctx context.Context, year int) (holiday.YearResult, error) {
	return r.fetch(ctx, year, time.Now())
}

// Invalidate drops the cached entry for year
func (r *Resolver) Invalidate(ctx context.Context, year int) error {
	if err := r.store.Invalidate(ctx, year); err != nil {
		return errors.Wrapf(err, "invalidate %d", year)
	}
	r.logger.Info("Cache invalidated", zap.Int("year", year))
	return nil
}

// InvalidateAll drops every cached entry
func (r *Resolver) InvalidateAll(ctx context.Context) error {
	if err := r.store.InvalidateAll(ctx); err != nil {
		return errors.Wrap(err, "invalidate all")
	}
	r.logger.Info("Cache cleared")
	return nil
}

// Package cache stores resolved year results so that sources are consulted at
// most once per year per TTL window.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/dateutil"
)

const DefaultTTL = 24 * time.Hour

// Store is a year-keyed cache of resolved results.
//
// Expired entries are misses at read time and are never evicted proactively.
// A Put replaces the entry for its year atomically: readers observe either the
// previous entry or the new one.
type Store interface {
	// Get returns a live entry for year
	Get(ctx context.Context, year int) (holiday.YearResult, bool)

	// Put stores result for year, replacing any previous entry
	Put(ctx context.Context, year int, result holiday.YearResult) error

	// Invalidate drops the entry for year
	Invalidate(ctx context.Context, year int) error

	// InvalidateAll drops every entry
	InvalidateAll(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// Entry is one cached year
type Entry struct {
	Year      int
	Result    holiday.YearResult
	CreatedAt time.Time
	TTL       time.Duration
}

// Live reports whether the entry is still valid at now
func (e *Entry) Live(now time.Time) bool {
	return now.Sub(e.CreatedAt) < e.TTL
}

// Backend names
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	Path    string
	TTL     time.Duration
}

// New creates the configured store
func New(ctx context.Context, opts Options, clock dateutil.Clock, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemory(opts.TTL, clock, logger), nil
	case BackendSQLite:
		store, err := OpenSQLite(ctx, opts.Path, opts.TTL, clock, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Newf("unknown cache backend %q", opts.Backend)
	}
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

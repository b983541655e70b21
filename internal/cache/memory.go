package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// Memory is an in-process Store. Entries are immutable once stored, so reads
// never block and a write for one year never blocks another year.
type Memory struct {
	entries sync.Map // int -> *Entry
	ttl     time.Duration
	clock   dateutil.Clock
	logger  *zap.Logger
}

// NewMemory creates an in-memory store
func NewMemory(ttl time.Duration, clock dateutil.Clock, logger *zap.Logger) *Memory {
	return &Memory{
		ttl:    ttlOrDefault(ttl),
		clock:  clock,
		logger: logger,
	}
}

// Get implements Store
func (m *Memory) Get(_ context.Context, year int) (holiday.YearResult, bool) {
	v, ok := m.entries.Load(year)
	if !ok {
		return holiday.YearResult{}, false
	}

	entry := v.(*Entry)
	if !entry.Live(m.clock.Now()) {
		m.logger.Debug("Cache entry expired",
			zap.Int("year", year),
			zap.Time("created_at", entry.CreatedAt))
		return holiday.YearResult{}, false
	}

	return entry.Result.Clone(), true
}

// Put implements Store
func (m *Memory) Put(_ context.Context, year int, result holiday.YearResult) error {
	m.entries.Store(year, &Entry{
		Year:      year,
		Result:    result.Clone(),
		CreatedAt: m.clock.Now(),
		TTL:       m.ttl,
	})
	return nil
}

// Invalidate implements Store
func (m *Memory) Invalidate(_ context.Context, year int) error {
	m.entries.Delete(year)
	return nil
}

// InvalidateAll implements Store
func (m *Memory) InvalidateAll(_ context.Context) error {
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
	return nil
}

// Close implements Store
func (m *Memory) Close() error {
	return nil
}

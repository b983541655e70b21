package sources

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/username/hu-holidays/pkg/dateutil"
)

// Entry is one registered adapter with its rank, 1 being the most trusted
type Entry struct {
	Rank    int
	Adapter Adapter
}

// Registry is the static, ranked catalog of adapters. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	entries []Entry
}

// NewRegistry ranks adapters by tier, keeping the given order inside a tier
func NewRegistry(adapters ...Adapter) *Registry {
	sorted := append([]Adapter(nil), adapters...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tier() < sorted[j].Tier()
	})

	entries := make([]Entry, len(sorted))
	for i, a := range sorted {
		entries[i] = Entry{Rank: i + 1, Adapter: a}
	}
	return &Registry{entries: entries}
}

// Entries returns the catalog in rank order
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of registered adapters
func (r *Registry) Len() int {
	return len(r.entries)
}

// Catalog options for DefaultAdapters
type Catalog struct {
	// Disabled source names, matched case-insensitively
	Disabled []string
	// Statutory registers the computed adapter as the last resort
	Statutory bool
}

// DefaultAdapters builds the production catalog. Coverage offsets are resolved
// against the clock once, so a long running process keeps stable ranges.
func DefaultAdapters(deps Deps, catalog Catalog) []Adapter {
	current := dateutil.CurrentYear(deps.Clock)

	all := []Adapter{
		NewMFAGov(RelativeRange(current, -1, 1), deps),
		NewPontosIdo(RelativeRange(current, -3, 1), deps),
		NewSzakmaiKamara(RelativeRange(current, -1, 1), deps),
		NewUnnepnapok(RelativeRange(current, -10, 10), deps),
		NewPublicHolidays(RelativeRange(current, -2, 3), deps),
		NewTimeAndDate(RelativeRange(current, -5, 5), deps),
		NewOfficeHolidays(RelativeRange(current, -3, 3), deps),
	}
	if catalog.Statutory {
		all = append(all, NewStatutory(YearRange{Min: 2000, Max: 2100}, deps))
	}

	disabled := make(map[string]bool, len(catalog.Disabled))
	for _, name := range catalog.Disabled {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	adapters := make([]Adapter, 0, len(all))
	for _, a := range all {
		if disabled[strings.ToLower(a.Name())] {
			deps.Logger.Info("Source disabled by configuration", zap.String("source", a.Name()))
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters
}

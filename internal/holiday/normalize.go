package holiday

import (
	"sort"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidResult marks data that violates the canonical schema invariants
	ErrInvalidResult = errors.New("invalid year result")

	// ErrNoHolidays marks a result without a single holiday
	ErrNoHolidays = errors.New("no holidays found")
)

// Normalize validates adapter output and builds the canonical YearResult.
//
// Both sequences are sorted ascending by date and the totals are derived.
// Any entry outside year, any duplicate date and any weekend workday that is
// not on a Saturday or Sunday rejects the whole result.
func Normalize(year int, holidays []Holiday, workdays []WeekendWorkday, source SourceMetadata) (YearResult, error) {
	if len(holidays) == 0 {
		return YearResult{}, errors.Wrapf(ErrNoHolidays, "year %d", year)
	}

	hs := append([]Holiday(nil), holidays...)
	ws := append(make([]WeekendWorkday, 0, len(workdays)), workdays...)

	seen := make(map[Date]struct{}, len(hs))
	for _, h := range hs {
		if !h.Date.Valid() {
			return YearResult{}, errors.Wrapf(ErrInvalidResult, "holiday %q has invalid date %s", h.Name, h.Date)
		}
		if h.Date.Year != year {
			return YearResult{}, errors.Wrapf(ErrInvalidResult,
				"holiday %s %q is outside year %d", h.Date, h.Name, year)
		}
		if _, dup := seen[h.Date]; dup {
			return YearResult{}, errors.Wrapf(ErrInvalidResult, "duplicate holiday on %s", h.Date)
		}
		seen[h.Date] = struct{}{}
	}

	seenWork := make(map[Date]struct{}, len(ws))
	for _, w := range ws {
		if !w.Date.Valid() {
			return YearResult{}, errors.Wrapf(ErrInvalidResult, "weekend workday has invalid date %s", w.Date)
		}
		if w.Date.Year != year {
			return YearResult{}, errors.Wrapf(ErrInvalidResult,
				"weekend workday %s is outside year %d", w.Date, year)
		}
		day, ok := WeekendDayOf(w.Date)
		if !ok {
			return YearResult{}, errors.Wrapf(ErrInvalidResult,
				"weekend workday %s falls on %s", w.Date, w.Date.Weekday())
		}
		if w.OriginalDay != day {
			return YearResult{}, errors.Wrapf(ErrInvalidResult,
				"weekend workday %s is a %s, not %s", w.Date, day, w.OriginalDay)
		}
		if _, dup := seenWork[w.Date]; dup {
			return YearResult{}, errors.Wrapf(ErrInvalidResult, "duplicate weekend workday on %s", w.Date)
		}
		seenWork[w.Date] = struct{}{}
	}

	sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
	sort.Slice(ws, func(i, j int) bool { return ws[i].Date.Before(ws[j].Date) })

	source.YearCoverage = year

	return YearResult{
		Year:                 year,
		Holidays:             hs,
		WeekendWorkdays:      ws,
		Source:               source,
		TotalHolidays:        len(hs),
		TotalWeekendWorkdays: len(ws),
	}, nil
}

// WorkdayOn builds a WeekendWorkday for d with OriginalDay taken from the date.
// A date that is not a Saturday or Sunday yields an entry that Normalize rejects.
func WorkdayOn(d Date, reason string, related *Date) WeekendWorkday {
	return WeekendWorkday{
		Date:           d,
		OriginalDay:    WeekendDay(d.Weekday().String()),
		Reason:         reason,
		RelatedHoliday: related,
	}
}

// Validate re-checks the invariants of an already built result.
// Used on values read back from persistent storage.
func (r YearResult) Validate() error {
	_, err := Normalize(r.Year, r.Holidays, r.WeekendWorkdays, r.Source)
	if err != nil {
		return err
	}
	if r.TotalHolidays != len(r.Holidays) || r.TotalWeekendWorkdays != len(r.WeekendWorkdays) {
		return errors.Wrap(ErrInvalidResult, "totals do not match entries")
	}
	for i := 1; i < len(r.Holidays); i++ {
		if !r.Holidays[i-1].Date.Before(r.Holidays[i].Date) {
			return errors.Wrap(ErrInvalidResult, "holidays are not sorted")
		}
	}
	for i := 1; i < len(r.WeekendWorkdays); i++ {
		if !r.WeekendWorkdays[i-1].Date.Before(r.WeekendWorkdays[i].Date) {
			return errors.Wrap(ErrInvalidResult, "weekend workdays are not sorted")
		}
	}
	return nil
}

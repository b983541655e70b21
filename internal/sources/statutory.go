package sources

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rickar/cal/v2"

	"github.com/username/hu-holidays/internal/holiday"
)

// Statutory computes the public holidays fixed by the Labour Code. It makes
// no network call and knows nothing about government decrees, so it never
// yields bridge days or weekend workdays. It is meant as a last resort.
type Statutory struct {
	coverage YearRange
	calendar *cal.BusinessCalendar
	english  map[string]string
	deps     Deps
}

func statutoryHoliday(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: month, Day: day, Func: cal.CalcDayOfMonth}
}

func statutoryEaster(name string, offset int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Offset: offset, Func: cal.CalcEasterOffset}
}

// NewStatutory creates the computed adapter
func NewStatutory(coverage YearRange, deps Deps) *Statutory {
	goodFriday := statutoryEaster("Nagypéntek", -2)
	goodFriday.StartYear = 2017

	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		statutoryHoliday("Újév", time.January, 1),
		statutoryHoliday("Nemzeti ünnep", time.March, 15),
		goodFriday,
		statutoryEaster("Húsvétvasárnap", 0),
		statutoryEaster("Húsvéthétfő", 1),
		statutoryHoliday("A munka ünnepe", time.May, 1),
		statutoryEaster("Pünkösdvasárnap", 49),
		statutoryEaster("Pünkösdhétfő", 50),
		statutoryHoliday("Államalapítás ünnepe", time.August, 20),
		statutoryHoliday("Az 1956-os forradalom ünnepe", time.October, 23),
		statutoryHoliday("Mindenszentek", time.November, 1),
		statutoryHoliday("Karácsony", time.December, 25),
		statutoryHoliday("Karácsony másnapja", time.December, 26),
	)

	return &Statutory{
		coverage: coverage,
		calendar: calendar,
		english: map[string]string{
			"Újév":                         "New Year's Day",
			"Nemzeti ünnep":                "1848 Revolution Memorial Day",
			"Nagypéntek":                   "Good Friday",
			"Húsvétvasárnap":               "Easter Sunday",
			"Húsvéthétfő":                  "Easter Monday",
			"A munka ünnepe":               "Labour Day",
			"Pünkösdvasárnap":              "Whit Sunday",
			"Pünkösdhétfő":                 "Whit Monday",
			"Államalapítás ünnepe":         "St. Stephen's Day",
			"Az 1956-os forradalom ünnepe": "1956 Revolution Memorial Day",
			"Mindenszentek":                "All Saints' Day",
			"Karácsony":                    "Christmas Day",
			"Karácsony másnapja":           "Second Day of Christmas",
		},
		deps: deps,
	}
}

func (s *Statutory) Name() string        { return "Statutory (computed)" }
func (s *Statutory) URL(int) string      { return "" }
func (s *Statutory) Coverage() YearRange { return s.coverage }
func (s *Statutory) Tier() Tier          { return TierComputed }

// Fetch implements Adapter
func (s *Statutory) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	if !s.coverage.Contains(year) {
		return holiday.YearResult{}, &FetchError{Source: s.Name(), Year: year, Kind: KindUnsupported,
			Err: errors.Newf("coverage is %s", s.coverage)}
	}
	if err := ctx.Err(); err != nil {
		return holiday.YearResult{}, err
	}

	var holidays []holiday.Holiday
	day := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	for day.Year() == year {
		if actual, _, h := s.calendar.IsHoliday(day); actual && h != nil {
			holidays = append(holidays, holiday.Holiday{
				Date:       holiday.DateOf(day),
				Name:       h.Name,
				NameEN:     s.english[h.Name],
				IsNational: true,
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	result, err := holiday.Normalize(year, holidays, nil, holiday.SourceMetadata{
		Name:      s.Name(),
		ScrapedAt: s.deps.Clock.Now().UTC(),
	})
	if err != nil {
		return holiday.YearResult{}, &FetchError{Source: s.Name(), Year: year, Kind: KindParseFailure, Err: err}
	}
	return result, nil
}

// Package holiday defines the canonical, source-agnostic schema for a year of
// Hungarian public holidays and weekend workdays.
package holiday

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/username/hu-holidays/pkg/dateutil"
)

// Date is a calendar date without time of day.
// It encodes as "YYYY-MM-DD" in JSON and YAML.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a "YYYY-MM-DD" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Valid reports whether d names a real calendar day
func (d Date) Valid() bool {
	return dateutil.ValidDate(d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d is before other
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// String returns the ISO form YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekendDay is the original weekday of a weekend workday
type WeekendDay string

const (
	Saturday WeekendDay = "Saturday"
	Sunday   WeekendDay = "Sunday"
)

// WeekendDayOf returns the WeekendDay for d, or false if d is a weekday
func WeekendDayOf(d Date) (WeekendDay, bool) {
	switch d.Weekday() {
	case time.Saturday:
		return Saturday, true
	case time.Sunday:
		return Sunday, true
	default:
		return "", false
	}
}

// Holiday represents a Hungarian public holiday or rest day
type Holiday struct {
	Date       Date   `json:"date" yaml:"date"`
	Name       string `json:"name" yaml:"name"`
	NameEN     string `json:"name_en" yaml:"name_en"`
	IsNational bool   `json:"is_national" yaml:"is_national"`
}

// WeekendWorkday represents a Saturday or Sunday redesignated as a working day (munkanap-áthelyezés)
type WeekendWorkday struct {
	Date           Date       `json:"date" yaml:"date"`
	OriginalDay    WeekendDay `json:"original_day" yaml:"original_day"`
	Reason         string     `json:"reason" yaml:"reason"`
	RelatedHoliday *Date      `json:"related_holiday" yaml:"related_holiday"`
}

// SourceMetadata records where a result came from
type SourceMetadata struct {
	Name         string    `json:"name" yaml:"name"`
	URL          string    `json:"url" yaml:"url"`
	YearCoverage int       `json:"year_coverage" yaml:"year_coverage"`
	ScrapedAt    time.Time `json:"scraped_at" yaml:"scraped_at"`
}

// YearResult is the canonical aggregated answer for one year
type YearResult struct {
	Year                 int              `json:"year" yaml:"year"`
	Holidays             []Holiday        `json:"holidays" yaml:"holidays"`
	WeekendWorkdays      []WeekendWorkday `json:"weekend_workdays" yaml:"weekend_workdays"`
	Source               SourceMetadata   `json:"source" yaml:"source"`
	TotalHolidays        int              `json:"total_holidays" yaml:"total_holidays"`
	TotalWeekendWorkdays int              `json:"total_weekend_workdays" yaml:"total_weekend_workdays"`
}

// Clone returns a deep copy of r, so callers cannot mutate shared slices
func (r YearResult) Clone() YearResult {
	out := r
	out.Holidays = append([]Holiday(nil), r.Holidays...)
	out.WeekendWorkdays = make([]WeekendWorkday, len(r.WeekendWorkdays))
	for i, w := range r.WeekendWorkdays {
		if w.RelatedHoliday != nil {
			related := *w.RelatedHoliday
			w.RelatedHoliday = &related
		}
		out.WeekendWorkdays[i] = w
	}
	return out
}

// FindHoliday returns the holiday on d, if any
func (r YearResult) FindHoliday(d Date) (Holiday, bool) {
	for _, h := range r.Holidays {
		if h.Date == d {
			return h, true
		}
	}
	return Holiday{}, false
}

// FindWeekendWorkday returns the weekend workday on d, if any
func (r YearResult) FindWeekendWorkday(d Date) (WeekendWorkday, bool) {
	for _, w := range r.WeekendWorkdays {
		if w.Date == d {
			return w, true
		}
	}
	return WeekendWorkday{}, false
}

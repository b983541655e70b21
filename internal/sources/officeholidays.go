package sources

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/username/hu-holidays/internal/holiday"
)

const officeHolidaysURL = "https://www.officeholidays.com/countries/hungary/{year}"

// OfficeHolidays scrapes officeholidays.com. Rows of table.country-table are
// Day | Date | Holiday Name | Type, with the date in a <time datetime> element.
type OfficeHolidays struct {
	page
}

// NewOfficeHolidays creates the OfficeHolidays.com adapter
func NewOfficeHolidays(coverage YearRange, deps Deps) *OfficeHolidays {
	return &OfficeHolidays{page{
		name:     "OfficeHolidays.com",
		url:      officeHolidaysURL,
		coverage: coverage,
		tier:     TierInternational,
		deps:     deps,
	}}
}

// Fetch implements Adapter
func (a *OfficeHolidays) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	table := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, "country-table")
	})
	if table == nil {
		return holiday.YearResult{}, a.fail(year, KindParseFailure, errors.New("country table not found"))
	}

	var holidays []holiday.Holiday
	seen := make(map[holiday.Date]bool)

	for _, row := range tableRows(table) {
		d, ok := officeHolidaysDate(row, year)
		if !ok {
			continue
		}
		name := row.text(2)
		if name == "" || seen[d] {
			continue
		}
		if kind := strings.ToLower(row.text(3)); strings.Contains(kind, "not a public holiday") {
			continue
		}
		seen[d] = true
		holidays = append(holidays, holiday.Holiday{
			Date:       d,
			Name:       name,
			NameEN:     name,
			IsNational: true,
		})
	}

	return a.finish(year, holidays, nil)
}

// officeHolidaysDate reads the machine readable datetime attribute. Rows for
// other years, which the site shows around the turn of the year, are dropped.
func officeHolidaysDate(row tableRow, year int) (holiday.Date, bool) {
	el := find(row.node, isElement(atom.Time))
	if el == nil {
		return holiday.Date{}, false
	}
	t, err := time.Parse("2006-01-02", attr(el, "datetime"))
	if err != nil || t.Year() != year {
		return holiday.Date{}, false
	}
	return holiday.DateOf(t), true
}

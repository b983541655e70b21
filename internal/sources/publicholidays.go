package sources

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/username/hu-holidays/internal/holiday"
)

const publicHolidaysURL = "https://publicholidays.hu/"

// PublicHolidays scrapes publicholidays.hu. All years share one page, each
// under an "<h2>2025 Public Holidays</h2>" heading followed by a
// Date | Day | Holiday table. Transferred working days appear as rows
// whose name mentions "working day".
type PublicHolidays struct {
	page
}

// NewPublicHolidays creates the PublicHolidays.hu adapter
func NewPublicHolidays(coverage YearRange, deps Deps) *PublicHolidays {
	return &PublicHolidays{page{
		name:     "PublicHolidays.hu",
		url:      publicHolidaysURL,
		coverage: coverage,
		tier:     TierEnglishHungarian,
		deps:     deps,
	}}
}

var publicHolidaysMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// "1 Jan", "15 March"
var publicHolidaysDate = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})`)

// Fetch implements Adapter
func (a *PublicHolidays) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	heading := publicHolidaysHeading(doc, year)
	if heading == nil {
		return holiday.YearResult{}, a.fail(year, KindParseFailure,
			errors.Newf("no section for %d", year))
	}
	table := findAfter(doc, heading, isElement(atom.Table))
	if table == nil {
		return holiday.YearResult{}, a.fail(year, KindParseFailure,
			errors.Newf("no table after the %d heading", year))
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday

	for _, row := range tableRows(table) {
		if len(row.cells) < 3 {
			continue
		}
		dateText, name := row.text(0), row.text(2)
		if name == "" || strings.Contains(strings.ToLower(dateText), "visit") {
			continue
		}

		m := publicHolidaysDate.FindStringSubmatch(dateText)
		if m == nil {
			continue
		}
		month, ok := publicHolidaysMonths[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		d := holiday.NewDate(year, month, day)

		if strings.Contains(strings.ToLower(name), "working day") {
			workdays = append(workdays, holiday.WorkdayOn(d, name, nil))
			continue
		}
		holidays = append(holidays, holiday.Holiday{
			Date:       d,
			Name:       name,
			NameEN:     name,
			IsNational: !strings.Contains(strings.ToLower(name), "bridge"),
		})
	}

	return a.finish(year, holidays, workdays)
}

func publicHolidaysHeading(doc *html.Node, year int) *html.Node {
	id := fmt.Sprintf("%d-public-holidays", year)
	want := fmt.Sprintf("%d public holidays", year)
	return find(doc, func(n *html.Node) bool {
		if attr(n, "id") == id {
			return true
		}
		return n.DataAtom == atom.H2 && strings.Contains(strings.ToLower(nodeText(n)), want)
	})
}

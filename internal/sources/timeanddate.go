package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/username/hu-holidays/internal/holiday"
)

const timeAndDateURL = "https://www.timeanddate.com/holidays/hungary/{year}"

// TimeAndDate scrapes timeanddate.com. Rows of table#holidays-table are
// Date | Weekday | Name | Type; only national and public holiday types are
// kept, and "Working day" rows become weekend workdays.
type TimeAndDate struct {
	page
}

// NewTimeAndDate creates the TimeAndDate.com adapter
func NewTimeAndDate(coverage YearRange, deps Deps) *TimeAndDate {
	return &TimeAndDate{page{
		name:     "TimeAndDate.com",
		url:      timeAndDateURL,
		coverage: coverage,
		tier:     TierInternational,
		deps:     deps,
	}}
}

var timeAndDateMonths = map[string]time.Month{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	// "1 Jan" or "Jan 1"
	timeAndDateDayFirst   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)`)
	timeAndDateMonthFirst = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2})`)
)

func timeAndDateParse(year int, s string) (holiday.Date, bool) {
	var monthName, dayText string
	if m := timeAndDateDayFirst.FindStringSubmatch(s); m != nil {
		dayText, monthName = m[1], m[2]
	} else if m := timeAndDateMonthFirst.FindStringSubmatch(s); m != nil {
		monthName, dayText = m[1], m[2]
	} else {
		return holiday.Date{}, false
	}
	if len(monthName) < 3 {
		return holiday.Date{}, false
	}
	month, ok := timeAndDateMonths[strings.ToLower(monthName[:3])]
	if !ok {
		return holiday.Date{}, false
	}
	day, _ := strconv.Atoi(dayText)
	return holiday.NewDate(year, month, day), true
}

// Fetch implements Adapter
func (a *TimeAndDate) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	table := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "id") == "holidays-table"
	})
	if table == nil {
		table = find(doc, func(n *html.Node) bool {
			return n.DataAtom == atom.Table && hasClass(n, "zebra")
		})
	}
	if table == nil {
		return holiday.YearResult{}, a.fail(year, KindParseFailure, errors.New("holiday table not found"))
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday
	seen := make(map[holiday.Date]bool)

	for _, row := range tableRows(table) {
		if len(row.cells) < 3 {
			continue
		}
		d, ok := timeAndDateParse(year, row.text(0))
		if !ok {
			continue
		}
		name := row.text(2)
		kind := strings.ToLower(row.text(3))

		switch {
		case strings.Contains(kind, "working day"):
			workdays = append(workdays, holiday.WorkdayOn(d, name, nil))
		case strings.Contains(kind, "national") || strings.Contains(kind, "public"):
			if name == "" || seen[d] {
				continue
			}
			seen[d] = true
			holidays = append(holidays, holiday.Holiday{
				Date:       d,
				Name:       name,
				NameEN:     name,
				IsNational: !strings.Contains(kind, "bridge"),
			})
		}
	}

	return a.finish(year, holidays, workdays)
}

package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/textutil"
)

const pontosIdoURL = "https://www.pontosido.com/munkaszuneti-napok/"

// PontosIdo scrapes pontosido.com, which publishes several years on one page.
// Every entry is a date line followed by a description line:
//
//	2025. május 2. péntek
//	Áthelyezett pihenőnap (4 napos hétvége)
type PontosIdo struct {
	page
}

// NewPontosIdo creates the PontosIdo.com adapter
func NewPontosIdo(coverage YearRange, deps Deps) *PontosIdo {
	return &PontosIdo{page{
		name:     "PontosIdo.com",
		url:      pontosIdoURL,
		coverage: coverage,
		tier:     TierDomestic,
		deps:     deps,
	}}
}

var pontosIdoMonths = [...]string{
	"januar", "februar", "marcius", "aprilis", "majus", "junius",
	"julius", "augusztus", "szeptember", "oktober", "november", "december",
}

func pontosIdoMonth(name string) (time.Month, bool) {
	folded := textutil.Fold(name)
	for i, m := range pontosIdoMonths {
		if m == folded {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

var pontosIdoFixed = map[[2]int]string{
	{1, 1}:   "New Year's Day",
	{3, 15}:  "1848 Revolution Memorial Day",
	{5, 1}:   "Labour Day",
	{8, 20}:  "St. Stephen's Day",
	{10, 23}: "1956 Revolution Memorial Day",
	{11, 1}:  "All Saints' Day",
	{12, 24}: "Christmas Eve",
	{12, 25}: "Christmas Day",
	{12, 26}: "Second Day of Christmas",
}

var (
	pontosIdoDate    = regexp.MustCompile(`^(\d{4})\.\s*(\p{L}+)\s+(\d{1,2})\.\s*(\p{L}+)$`)
	pontosIdoPrefix  = regexp.MustCompile(`(?i)^(ünnepnap|pihenőnap),?\s*`)
	pontosIdoWeekend = regexp.MustCompile(`\s*\(\d+\s*napos\s*hétvége\)`)
)

// Fetch implements Adapter
func (a *PontosIdo) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday

	lines := textLines(doc)
	for i := 0; i+1 < len(lines); i++ {
		m := pontosIdoDate.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if y, _ := strconv.Atoi(m[1]); y != year {
			continue
		}
		month, ok := pontosIdoMonth(m[2])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[3])
		d := holiday.NewDate(year, month, day)

		desc := lines[i+1]
		if pontosIdoDate.MatchString(desc) {
			continue
		}
		i++

		folded := textutil.Fold(desc)
		switch {
		case strings.Contains(folded, "munkanap"):
			workdays = append(workdays, holiday.WorkdayOn(d, "Áthelyezett munkanap (Transferred workday)", nil))
		case strings.Contains(folded, "unnepnap"), strings.Contains(folded, "pihenonap"):
			holidays = append(holidays, pontosIdoHoliday(d, desc))
		}
	}

	return a.finish(year, holidays, workdays)
}

func pontosIdoHoliday(d holiday.Date, desc string) holiday.Holiday {
	folded := textutil.Fold(desc)
	national := strings.Contains(folded, "unnepnap")

	name := pontosIdoWeekend.ReplaceAllString(desc, "")
	name = strings.TrimSpace(pontosIdoPrefix.ReplaceAllString(name, ""))
	if name == "" {
		name = "Pihenőnap"
	}

	en, ok := pontosIdoFixed[[2]int{int(d.Month), d.Day}]
	if !ok {
		nameFolded := textutil.Fold(name)
		switch {
		case strings.Contains(nameFolded, "nagypentek"):
			en = "Good Friday"
		case strings.Contains(nameFolded, "husvet"):
			en = "Easter " + pontosIdoDayPart(d)
		case strings.Contains(nameFolded, "punkosd"):
			en = "Whit " + pontosIdoDayPart(d)
		case !national:
			en = "Bridge Day"
		default:
			en = name
		}
	}

	return holiday.Holiday{Date: d, Name: name, NameEN: en, IsNational: national}
}

func pontosIdoDayPart(d holiday.Date) string {
	if d.Weekday() == time.Sunday {
		return "Sunday"
	}
	return "Monday"
}

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

const szakmaiKamaraURL = "https://szakmaikamara.hu/munkaszuneti-napok/"

// SzakmaiKamara scrapes the chamber's yearly article. Entries omit the year,
// which is taken from the section heading:
//
//	Munkaszüneti napok 2025
//	május 1., csütörtök – A munka ünnepe
//	május 17., szombat – munkanap (május 2. helyett)
//	december 25., csütörtök és december 26., péntek – Karácsony
type SzakmaiKamara struct {
	page
}

// NewSzakmaiKamara creates the SzakmaiKamara.hu adapter
func NewSzakmaiKamara(coverage YearRange, deps Deps) *SzakmaiKamara {
	return &SzakmaiKamara{page{
		name:     "SzakmaiKamara.hu",
		url:      szakmaiKamaraURL,
		coverage: coverage,
		tier:     TierDomestic,
		deps:     deps,
	}}
}

// months keyed by the first three folded letters
var szakmaiMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"maj": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sze": time.September, "okt": time.October, "nov": time.November, "dec": time.December,
}

func szakmaiMonth(name string) (time.Month, bool) {
	folded := textutil.Fold(name)
	if len(folded) < 3 {
		return 0, false
	}
	m, ok := szakmaiMonths[folded[:3]]
	return m, ok
}

var (
	szakmaiEntry   = regexp.MustCompile(`(\p{L}+)\s+(\d{1,2})[.,]+\s*\(?(hétfő|kedd|szerda|csütörtök|péntek|szombat|vasárnap)\)?`)
	szakmaiYear    = regexp.MustCompile(`\b((?:19|20|21)\d{2})\b`)
	szakmaiName    = regexp.MustCompile(`[–-]\s*([^–-]+)$`)
	szakmaiParens  = regexp.MustCompile(`\(([^)]*helyett[^)]*)\)`)
	szakmaiInstead = regexp.MustCompile(`(\p{L}+)\s+(\d{1,2})\.`)
)

// Fetch implements Adapter
func (a *SzakmaiKamara) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday
	seen := make(map[holiday.Date]bool)
	active := false

	for _, line := range textLines(doc) {
		entries := szakmaiEntry.FindAllStringSubmatch(line, -1)
		if len(entries) == 0 {
			if m := szakmaiYear.FindStringSubmatch(line); m != nil {
				y, _ := strconv.Atoi(m[1])
				active = y == year
			}
			continue
		}
		if !active {
			continue
		}

		folded := textutil.Fold(line)
		name := ""
		if m := szakmaiName.FindStringSubmatch(line); m != nil {
			name = strings.TrimSpace(m[1])
		}

		for _, e := range entries {
			month, ok := szakmaiMonth(e[1])
			if !ok {
				continue
			}
			day, _ := strconv.Atoi(e[2])
			d := holiday.NewDate(year, month, day)

			if strings.Contains(folded, "munkanap") {
				reason, related := szakmaiReason(year, line)
				workdays = append(workdays, holiday.WorkdayOn(d, reason, related))
				continue
			}
			if seen[d] {
				continue
			}
			seen[d] = true
			holidays = append(holidays, szakmaiHoliday(d, name, strings.Contains(folded, "pihenonap")))
		}
	}

	return a.finish(year, holidays, workdays)
}

func szakmaiHoliday(d holiday.Date, name string, bridge bool) holiday.Holiday {
	en := szakmaiEnglish(d, bridge)
	if name == "" {
		name = en
	}
	return holiday.Holiday{Date: d, Name: name, NameEN: en, IsNational: !bridge}
}

func szakmaiEnglish(d holiday.Date, bridge bool) string {
	switch {
	case bridge:
		return "Bridge Day"
	case d.Month == time.January && d.Day == 1:
		return "New Year's Day"
	case d.Month == time.March && d.Day == 15:
		return "1848 Revolution Memorial Day"
	case d.Month == time.May && d.Day == 1:
		return "Labour Day"
	case d.Month == time.August && d.Day == 20:
		return "St. Stephen's Day"
	case d.Month == time.October && d.Day == 23:
		return "1956 Revolution Memorial Day"
	case d.Month == time.November && d.Day == 1:
		return "All Saints' Day"
	case d.Month == time.December && d.Day == 24:
		return "Christmas Eve"
	case d.Month == time.December && d.Day == 25:
		return "Christmas Day"
	case d.Month == time.December && d.Day == 26:
		return "Second Day of Christmas"
	}

	switch d.Weekday() {
	case time.Friday:
		return "Good Friday"
	case time.Sunday:
		if d.Month == time.March || d.Month == time.April {
			return "Easter Sunday"
		}
		return "Whit Sunday"
	case time.Monday:
		if d.Month == time.March || d.Month == time.April {
			return "Easter Monday"
		}
		return "Whit Monday"
	}
	return "Public Holiday"
}

func szakmaiReason(year int, line string) (string, *holiday.Date) {
	m := szakmaiParens.FindStringSubmatch(line)
	if m == nil {
		return "munkanap", nil
	}
	reason := strings.TrimSpace(m[1])
	if r := szakmaiInstead.FindStringSubmatch(reason); r != nil {
		if month, ok := szakmaiMonth(r[1]); ok {
			day, _ := strconv.Atoi(r[2])
			d := holiday.NewDate(year, month, day)
			return reason, &d
		}
	}
	return reason, nil
}

package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/textutil"
)

const mfaGovURL = "https://almati.mfa.gov.hu/hu/hu-uennepnapok"

// MFAGov scrapes the holiday notice of the Hungarian consulate in Almaty.
// The page lists Hungarian and local holidays as one line per date:
//
//	2025. január 1. Újév – pihenőnap (4 napos hétvége)
//	2025. május 17. munkanap (május 2. helyett)
//	2025. december 24-26. Karácsony
//
// Most editions only announce long weekends and omit the munkanap lines. Such a
// page cannot answer the weekend workday question, so it is reported as a parse
// failure and the next source is tried.
type MFAGov struct {
	page
}

// NewMFAGov creates the MFA.gov.hu adapter
func NewMFAGov(coverage YearRange, deps Deps) *MFAGov {
	return &MFAGov{page{
		name:     "MFA.gov.hu (Official)",
		url:      mfaGovURL,
		coverage: coverage,
		tier:     TierDomestic,
		deps:     deps,
	}}
}

var mfaMonths = map[string]time.Month{
	"januar": time.January, "februar": time.February, "marcius": time.March,
	"aprilis": time.April, "majus": time.May, "junius": time.June,
	"julius": time.July, "augusztus": time.August, "szeptember": time.September,
	"oktober": time.October, "november": time.November, "december": time.December,
}

// English names keyed by folded Hungarian fragments, first match wins
var mfaEnglish = []struct{ fragment, en string }{
	{"ujev", "New Year's Day"},
	{"nagypentek", "Good Friday"},
	{"husvetvasarnap", "Easter Sunday"},
	{"husvethetfo", "Easter Monday"},
	{"munka unnepe", "Labour Day"},
	{"punkosdvasarnap", "Whit Sunday"},
	{"punkosdhetfo", "Whit Monday"},
	{"allamalapitas", "State Foundation Day"},
	{"mindenszentek", "All Saints' Day"},
	{"athelyezett pihenonap", "Bridge Day"},
	{"pihenonap", "Rest Day"},
}

var errMFANoWorkdays = errors.New("long weekends announced but no transferred workday listed")

var (
	mfaLine     = regexp.MustCompile(`^(\d{4})\.\s*(\p{L}+)\.?\s+(\d{1,2})(?:\s*[-–]\s*(\d{1,2}))?\.\s*(.+)$`)
	mfaWeekend  = regexp.MustCompile(`\s*\(\d+\s*napos\s*hétvége\).*$`)
	mfaRestNote = regexp.MustCompile(`\s*[–-]\s*pihenőnap.*$`)
	mfaParens   = regexp.MustCompile(`\(([^)]+)\)`)
	mfaInstead  = regexp.MustCompile(`(\p{L}+)\s+(\d{1,2})\.\s*helyett`)
)

// Fetch implements Adapter
func (a *MFAGov) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday
	seen := make(map[holiday.Date]bool)
	longWeekend := false

	for _, line := range textLines(doc) {
		m := mfaLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if y, _ := strconv.Atoi(m[1]); y != year {
			continue
		}
		month, ok := mfaMonths[textutil.Fold(m[2])]
		if !ok {
			continue
		}
		first, _ := strconv.Atoi(m[3])
		last := first
		if m[4] != "" {
			last, _ = strconv.Atoi(m[4])
		}
		text := strings.TrimSpace(m[5])
		folded := textutil.Fold(text)
		if mfaWeekend.MatchString(text) {
			longWeekend = true
		}

		// The consulate also lists Kazakh and Tajik holidays
		if strings.Contains(folded, "kazah") || strings.Contains(folded, "tadzsik") {
			continue
		}

		if strings.Contains(folded, "munkanap") {
			d := holiday.NewDate(year, month, first)
			workdays = append(workdays, holiday.WorkdayOn(d, mfaReason(text), mfaRelated(year, text)))
			continue
		}

		if first != last {
			for _, h := range mfaChristmas(year, month, first, last) {
				if !seen[h.Date] {
					seen[h.Date] = true
					holidays = append(holidays, h)
				}
			}
			continue
		}

		d := holiday.NewDate(year, month, first)
		if seen[d] {
			continue
		}
		seen[d] = true
		holidays = append(holidays, mfaHoliday(d, text))
	}

	if longWeekend && len(workdays) == 0 {
		return holiday.YearResult{}, a.fail(year, KindParseFailure, errMFANoWorkdays)
	}
	return a.finish(year, holidays, workdays)
}

func mfaHoliday(d holiday.Date, text string) holiday.Holiday {
	name := mfaWeekend.ReplaceAllString(text, "")
	name = strings.TrimSpace(mfaRestNote.ReplaceAllString(name, ""))
	folded := textutil.Fold(name)

	en := name
	switch {
	case d.Month == time.March && d.Day == 15:
		en = "1848 Revolution Memorial Day"
	case d.Month == time.October && d.Day == 23:
		en = "1956 Revolution Memorial Day"
	default:
		for _, e := range mfaEnglish {
			if strings.Contains(folded, e.fragment) {
				en = e.en
				break
			}
		}
	}

	return holiday.Holiday{
		Date:       d,
		Name:       name,
		NameEN:     en,
		IsNational: !strings.Contains(folded, "pihenonap"),
	}
}

// mfaChristmas expands a "december 24-26." range. Only Christmas Eve and the
// two Christmas days are holidays; other days of a range are weekend filler.
func mfaChristmas(year int, month time.Month, first, last int) []holiday.Holiday {
	var out []holiday.Holiday
	for day := first; day <= last; day++ {
		d := holiday.NewDate(year, month, day)
		switch {
		case month == time.December && day == 24:
			out = append(out, holiday.Holiday{Date: d, Name: "Szenteste", NameEN: "Christmas Eve"})
		case month == time.December && day == 25:
			out = append(out, holiday.Holiday{Date: d, Name: "Karácsony", NameEN: "Christmas Day", IsNational: true})
		case month == time.December && day == 26:
			out = append(out, holiday.Holiday{Date: d, Name: "Karácsony másnapja", NameEN: "Second Day of Christmas", IsNational: true})
		}
	}
	return out
}

func mfaReason(text string) string {
	if m := mfaParens.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

func mfaRelated(year int, text string) *holiday.Date {
	m := mfaInstead.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := mfaMonths[textutil.Fold(m[1])]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(m[2])
	d := holiday.NewDate(year, month, day)
	return &d
}

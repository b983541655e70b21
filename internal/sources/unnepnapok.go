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

const unnepnapokURL = "https://unnepnapok.com/munkaszuneti-napok-unnepek-{year}-magyarorszag/"

// Unnepnapok scrapes unnepnapok.com. The yearly page lists holidays and
// transferred workdays together:
//
//	2026. január 1. – csütörtök – Újév
//	2026. január 10. – szombat – munkanap (január 2. péntek helyett)
type Unnepnapok struct {
	page
}

// NewUnnepnapok creates the Unnepnapok.com adapter
func NewUnnepnapok(coverage YearRange, deps Deps) *Unnepnapok {
	return &Unnepnapok{page{
		name:     "Unnepnapok.com",
		url:      unnepnapokURL,
		coverage: coverage,
		tier:     TierDomestic,
		deps:     deps,
	}}
}

var unnepnapokMonths = map[string]time.Month{
	"januar": 1, "februar": 2, "marcius": 3, "aprilis": 4, "majus": 5, "junius": 6,
	"julius": 7, "augusztus": 8, "szeptember": 9, "oktober": 10, "november": 11, "december": 12,
}

var (
	// year, month, day, then the rest of the line after the first dash
	unnepnapokLine    = regexp.MustCompile(`^(\d{4})\.\s*(\p{L}+)\.?\s+(\d{1,2})\.\s*[–—-]\s*(.+)$`)
	unnepnapokDayName = regexp.MustCompile(`(?i)^(hétfő|kedd|szerda|csütörtök|péntek|szombat|vasárnap)\s*[–—-]\s*`)
	unnepnapokParens  = regexp.MustCompile(`\(([^)]+)\)`)
	unnepnapokNoise   = regexp.MustCompile(`(?i)^(szombati\s+munkanap|munkanap)[,\s–—-]*`)
	unnepnapokInstead = regexp.MustCompile(`(\p{L}+)\s+(\d{1,2})\.`)
)

// Fetch implements Adapter
func (a *Unnepnapok) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	doc, err := a.document(ctx, year)
	if err != nil {
		return holiday.YearResult{}, err
	}

	var holidays []holiday.Holiday
	var workdays []holiday.WeekendWorkday
	seenHoliday := make(map[holiday.Date]bool)
	seenWorkday := make(map[holiday.Date]bool)

	for _, line := range textLines(doc) {
		m := unnepnapokLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if y, _ := strconv.Atoi(m[1]); y != year {
			continue
		}
		month, ok := unnepnapokMonths[strings.TrimRight(textutil.Fold(m[2]), ".")]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[3])
		d := holiday.NewDate(year, month, day)
		title := strings.TrimSpace(unnepnapokDayName.ReplaceAllString(m[4], ""))

		if strings.Contains(textutil.Fold(title), "munkanap") {
			if seenWorkday[d] {
				continue
			}
			seenWorkday[d] = true
			reason, related := unnepnapokReason(year, title)
			workdays = append(workdays, holiday.WorkdayOn(d, reason, related))
			continue
		}

		if seenHoliday[d] {
			continue
		}
		seenHoliday[d] = true
		holidays = append(holidays, holiday.Holiday{
			Date:       d,
			Name:       title,
			NameEN:     unnepnapokEnglish(d, title),
			IsNational: !strings.Contains(textutil.Fold(title), "pihenonap"),
		})
	}

	return a.finish(year, holidays, workdays)
}

// unnepnapokEnglish translates fixed-date holidays by date and movable ones by
// their Hungarian name
func unnepnapokEnglish(d holiday.Date, title string) string {
	if en, ok := pontosIdoFixed[[2]int{int(d.Month), d.Day}]; ok {
		return en
	}
	folded := textutil.Fold(title)
	if strings.Contains(folded, "pihenonap") {
		return "Bridge Day"
	}
	for _, e := range mfaEnglish {
		if strings.Contains(folded, e.fragment) {
			return e.en
		}
	}
	return title
}

func unnepnapokReason(year int, title string) (string, *holiday.Date) {
	reason := title
	if m := unnepnapokParens.FindStringSubmatch(title); m != nil {
		reason = strings.TrimSpace(m[1])
	}
	reason = strings.TrimSpace(unnepnapokNoise.ReplaceAllString(reason, ""))
	if reason == "" {
		return "Áthelyezett munkanap", nil
	}

	if !strings.Contains(textutil.Fold(reason), "helyett") {
		return reason, nil
	}
	m := unnepnapokInstead.FindStringSubmatch(reason)
	if m == nil {
		return reason, nil
	}
	month, ok := unnepnapokMonths[textutil.Fold(m[1])]
	if !ok {
		return reason, nil
	}
	day, _ := strconv.Atoi(m[2])
	related := holiday.NewDate(year, month, day)
	return reason, &related
}

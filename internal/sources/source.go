// Package sources contains the adapters that scrape Hungarian holiday data from
// independent web sources, the registry that ranks them and the policy that
// selects candidates for a year.
package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/transport"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// Adapter fetches one year of holiday data from a single source
type Adapter interface {
	// Name returns the human readable source name
	Name() string

	// URL returns the page consulted for year
	URL(year int) string

	// Coverage returns the years the source can answer
	Coverage() YearRange

	// Tier returns the trust tier of the source
	Tier() Tier

	// Fetch retrieves and normalizes data for year.
	// It performs at most one transport call and never caches.
	Fetch(ctx context.Context, year int) (holiday.YearResult, error)
}

// Tier orders sources by trust, lower is preferred
type Tier int

const (
	TierDomestic Tier = iota + 1
	TierEnglishHungarian
	TierInternational
	TierComputed
)

func (t Tier) String() string {
	switch t {
	case TierDomestic:
		return "domestic"
	case TierEnglishHungarian:
		return "english-hungarian"
	case TierInternational:
		return "international"
	case TierComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// YearRange is an inclusive range of years
type YearRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// RelativeRange resolves offsets against the current year
func RelativeRange(current, minOffset, maxOffset int) YearRange {
	return YearRange{Min: current + minOffset, Max: current + maxOffset}
}

// Contains reports whether year is inside the range
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

var (
	// ErrUnsupported means the year is outside the source's coverage
	ErrUnsupported = errors.New("year not supported by source")

	// ErrUnreachable means the page could not be retrieved
	ErrUnreachable = errors.New("source unreachable")

	// ErrParseFailure means the page was retrieved but could not be mapped
	ErrParseFailure = errors.New("source parse failure")
)

// Kind classifies a FetchError
type Kind string

const (
	KindUnsupported  Kind = "unsupported"
	KindUnreachable  Kind = "unreachable"
	KindParseFailure Kind = "parse_failure"
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupported:
		return ErrUnsupported
	case KindUnreachable:
		return ErrUnreachable
	default:
		return ErrParseFailure
	}
}

// FetchError is returned by every adapter failure
type FetchError struct {
	Source string
	Year   int
	Kind   Kind
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s for %d", e.Source, e.Kind, e.Year)
	}
	return fmt.Sprintf("%s: %s for %d: %v", e.Source, e.Kind, e.Year, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind
func (e *FetchError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf extracts the failure kind of err, if it is a FetchError
func KindOf(err error) (Kind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// Deps are the collaborators shared by all adapters
type Deps struct {
	Client  transport.Client
	Clock   dateutil.Clock
	Timeout time.Duration
	Logger  *zap.Logger
}

// page holds what every scraping adapter has in common: identity, coverage and
// the single GET that retrieves the document.
type page struct {
	name     string
	url      string
	coverage YearRange
	tier     Tier
	deps     Deps
}

func (p *page) Name() string        { return p.name }
func (p *page) Coverage() YearRange { return p.coverage }
func (p *page) Tier() Tier          { return p.tier }

// URL substitutes {year} in the page template
func (p *page) URL(year int) string {
	return strings.ReplaceAll(p.url, "{year}", strconv.Itoa(year))
}

func (p *page) fail(year int, kind Kind, err error) error {
	return &FetchError{Source: p.name, Year: year, Kind: kind, Err: err}
}

// document checks coverage, performs the one GET for year and parses the HTML
func (p *page) document(ctx context.Context, year int) (*html.Node, error) {
	if !p.coverage.Contains(year) {
		return nil, p.fail(year, KindUnsupported, errors.Newf("coverage is %s", p.coverage))
	}

	url := p.URL(year)
	p.deps.Logger.Debug("Fetching source page",
		zap.String("source", p.name),
		zap.Int("year", year),
		zap.String("url", url))

	resp, err := p.deps.Client.Get(ctx, url, p.deps.Timeout)
	if err != nil {
		return nil, p.fail(year, KindUnreachable, err)
	}
	if !resp.OK() {
		return nil, p.fail(year, KindUnreachable, errors.Newf("status %d", resp.Status))
	}

	doc, err := parseHTML(resp.Body)
	if err != nil {
		return nil, p.fail(year, KindParseFailure, err)
	}
	return doc, nil
}

// finish runs the normalizer and maps its rejection to ParseFailure
func (p *page) finish(year int, holidays []holiday.Holiday, workdays []holiday.WeekendWorkday) (holiday.YearResult, error) {
	result, err := holiday.Normalize(year, holidays, workdays, holiday.SourceMetadata{
		Name:      p.name,
		URL:       p.URL(year),
		ScrapedAt: p.deps.Clock.Now().UTC(),
	})
	if err != nil {
		return holiday.YearResult{}, p.fail(year, KindParseFailure, err)
	}

	p.deps.Logger.Debug("Parsed source page",
		zap.String("source", p.name),
		zap.Int("year", year),
		zap.Int("holidays", result.TotalHolidays),
		zap.Int("weekend_workdays", result.TotalWeekendWorkdays))

	return result, nil
}

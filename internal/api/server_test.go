package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/metrics"
	"github.com/username/hu-holidays/internal/resolver"
	"github.com/username/hu-holidays/internal/sources"
	"github.com/username/hu-holidays/pkg/dateutil"
)

var now = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

type fakeService struct {
	results     map[int]holiday.YearResult
	err         error
	resolved    []int
	invalidated []int
	cleared     int
}

func (f *fakeService) Resolve(_ context.Context, year int) (holiday.YearResult, error) {
	f.resolved = append(f.resolved, year)
	if f.err != nil {
		return holiday.YearResult{}, f.err
	}
	return f.results[year], nil
}

func (f *fakeService) Check(ctx context.Context, d holiday.Date) (holiday.DayStatus, error) {
	result, err := f.Resolve(ctx, d.Year)
	if err != nil {
		return holiday.DayStatus{}, err
	}
	return holiday.Classify(result, d), nil
}

func (f *fakeService) Invalidate(_ context.Context, year int) error {
	f.invalidated = append(f.invalidated, year)
	return nil
}

func (f *fakeService) InvalidateAll(context.Context) error {
	f.cleared++
	return nil
}

func sample(t *testing.T, year int) holiday.YearResult {
	t.Helper()
	related := holiday.NewDate(year, time.May, 2)
	result, err := holiday.Normalize(year,
		[]holiday.Holiday{
			{Date: holiday.NewDate(year, time.January, 1), Name: "Újév", NameEN: "New Year's Day", IsNational: true},
			{Date: holiday.NewDate(year, time.March, 15), Name: "Nemzeti ünnep", NameEN: "National Day", IsNational: true},
		},
		[]holiday.WeekendWorkday{holiday.WorkdayOn(holiday.NewDate(2025, time.May, 17), "május 2. helyett", &related)},
		holiday.SourceMetadata{Name: "Unnepnapok.com", ScrapedAt: now},
	)
	require.NoError(t, err)
	return result
}

func newTestServer(t *testing.T, svc Service) http.Handler {
	return NewServer(svc, zaptest.NewLogger(t),
		WithClock(dateutil.NewFixedClock(now)),
		WithMetrics(metrics.New()),
		WithMiddlewares(LoggingMiddleware(zaptest.NewLogger(t))))
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHolidayEndpoints(t *testing.T) {
	svc := &fakeService{results: map[int]holiday.YearResult{2025: sample(t, 2025)}}
	h := newTestServer(t, svc)

	tests := []struct {
		name      string
		path      string
		wantKey   string
		wantCount int
	}{
		{"holidays by query", "/holidays?year=2025", "holidays", 2},
		{"holidays default year", "/holidays", "holidays", 2},
		{"holidays by path", "/holidays/2025", "holidays", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, float64(2025), body["year"])
			assert.Len(t, body[tt.wantKey], tt.wantCount)
			assert.Equal(t, float64(1), body["total_weekend_workdays"])
		})
	}
	assert.Equal(t, []int{2025, 2025, 2025}, svc.resolved)
}

func TestListEndpoints(t *testing.T) {
	svc := &fakeService{results: map[int]holiday.YearResult{2025: sample(t, 2025)}}
	h := newTestServer(t, svc)

	tests := []struct {
		path      string
		wantCount int
		wantField string
	}{
		{"/holidays-only?year=2025", 2, "name_en"},
		{"/holidays-only", 2, "is_national"},
		{"/workdays?year=2025", 1, "original_day"},
		{"/workdays/2025", 1, "related_holiday"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, rr.Code)

			var items []map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
			require.Len(t, items, tt.wantCount)
			assert.Contains(t, items[0], tt.wantField)
		})
	}
}

func TestYearValidation(t *testing.T) {
	svc := &fakeService{}
	h := newTestServer(t, svc)

	for _, path := range []string{
		"/holidays/1999",
		"/holidays/2101",
		"/holidays/abc",
		"/holidays?year=1800",
		"/holidays-only?year=x",
		"/workdays/3000",
		"/workdays?year=2101",
		"/check/1999-01-01",
		"/check/2025-13-01",
		"/check/not-a-date",
	} {
		t.Run(path, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, path)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
	assert.Empty(t, svc.resolved, "invalid requests never reach the resolver")

	rr := do(t, h, http.MethodDelete, "/cache/1850")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.invalidated)
}

func TestCheck(t *testing.T) {
	svc := &fakeService{results: map[int]holiday.YearResult{2025: sample(t, 2025)}}
	h := newTestServer(t, svc)

	tests := []struct {
		date        string
		wantHoliday bool
		wantWorking bool
		wantName    any
	}{
		{"2025-03-15", true, false, "Nemzeti ünnep"},
		{"2025-05-17", false, true, nil},
		{"2025-05-18", false, false, nil},
		{"2025-05-19", false, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/check/"+tt.date)
			require.Equal(t, http.StatusOK, rr.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.date, body["date"])
			assert.Equal(t, tt.wantHoliday, body["is_holiday"])
			assert.Equal(t, tt.wantWorking, body["is_working_day"])
			assert.Equal(t, tt.wantName, body["holiday_name"])
		})
	}
}

func TestExhaustedIsBadGateway(t *testing.T) {
	exhausted := errors.WithHint(&resolver.ExhaustedError{
		Year: 2040,
		Attempts: []resolver.Attempt{
			{Source: "Unnepnapok.com", Kind: sources.KindUnreachable, Error: "status 503"},
			{Source: "TimeAndDate.com", Kind: sources.KindParseFailure, Error: "no holiday table"},
		},
	}, "enable the statutory fallback")
	h := newTestServer(t, &fakeService{err: exhausted})

	rr := do(t, h, http.MethodGet, "/holidays/2040")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2040, body.Year)
	require.Len(t, body.Attempts, 2)
	assert.Equal(t, "Unnepnapok.com", body.Attempts[0].Source)
	assert.Equal(t, sources.KindParseFailure, body.Attempts[1].Kind)
	assert.Equal(t, []string{"enable the statutory fallback"}, body.Hints)
}

func TestOtherErrors(t *testing.T) {
	rr := do(t, newTestServer(t, &fakeService{err: errors.New("disk on fire")}), http.MethodGet, "/holidays/2025")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk on fire")

	rr = do(t, newTestServer(t, &fakeService{err: errors.Wrap(context.Canceled, "resolving 2025")}), http.MethodGet, "/holidays/2025")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCacheAdministration(t *testing.T) {
	svc := &fakeService{}
	h := newTestServer(t, svc)

	rr := do(t, h, http.MethodPost, "/cache/clear")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cache cleared successfully")
	assert.Equal(t, 1, svc.cleared)

	rr = do(t, h, http.MethodDelete, "/cache/2026")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int{2026}, svc.invalidated)

	rr = do(t, h, http.MethodGet, "/cache/clear")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestInfoHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, &fakeService{})

	rr := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "Hungarian Holidays API", info["name"])
	assert.Equal(t, float64(2025), info["current_year"])

	rr = do(t, h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rr.Body.String(), "2025-03-01T10:00:00Z")

	rr = do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestCrossOriginRequests(t *testing.T) {
	svc := &fakeService{results: map[int]holiday.YearResult{2025: sample(t, 2025)}}
	h := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/holidays/2025", nil)
	req.Header.Set("Origin", "https://calendar.example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/cache/2025", nil)
	preflight.Header.Set("Origin", "https://calendar.example.org")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, preflight)
	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	assert.Empty(t, svc.invalidated, "preflight does not reach the handler")
}

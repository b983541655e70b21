package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/resolver"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// Accepted year bounds for every endpoint
const (
	MinYear = 2000
	MaxYear = 2100
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error    string             `json:"error"`
	Year     int                `json:"year,omitempty"`
	Attempts []resolver.Attempt `json:"attempts,omitempty"`
	Hints    []string           `json:"hints,omitempty"`
}

// Routes holds the handler dependencies
type Routes struct {
	service Service
	clock   dateutil.Clock
	logger  *zap.Logger
}

func (rt *Routes) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"name":        "Hungarian Holidays API",
		"version":     Version,
		"description": "REST API for Hungarian public holidays and weekend workdays",
		"endpoints": map[string]string{
			"holidays":         "/holidays",
			"holidays_by_year": "/holidays/{year}",
			"holidays_only":    "/holidays-only",
			"workdays":         "/workdays",
			"workdays_by_year": "/workdays/{year}",
			"check_date":       "/check/{date}",
			"clear_cache":      "/cache/clear",
			"metrics":          "/metrics",
		},
		"current_year": dateutil.CurrentYear(rt.clock),
	}, http.StatusOK)
}

func (rt *Routes) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": rt.clock.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

func (rt *Routes) holidaysByQuery(w http.ResponseWriter, r *http.Request) {
	if result, ok := rt.resolveQuery(w, r); ok {
		writeJSON(w, result, http.StatusOK)
	}
}

func (rt *Routes) holidaysByPath(w http.ResponseWriter, r *http.Request) {
	if result, ok := rt.resolvePath(w, r); ok {
		writeJSON(w, result, http.StatusOK)
	}
}

func (rt *Routes) holidaysOnly(w http.ResponseWriter, r *http.Request) {
	if result, ok := rt.resolveQuery(w, r); ok {
		writeJSON(w, result.Holidays, http.StatusOK)
	}
}

func (rt *Routes) workdaysByQuery(w http.ResponseWriter, r *http.Request) {
	if result, ok := rt.resolveQuery(w, r); ok {
		writeJSON(w, result.WeekendWorkdays, http.StatusOK)
	}
}

func (rt *Routes) workdaysByPath(w http.ResponseWriter, r *http.Request) {
	if result, ok := rt.resolvePath(w, r); ok {
		writeJSON(w, result.WeekendWorkdays, http.StatusOK)
	}
}

func (rt *Routes) check(w http.ResponseWriter, r *http.Request) {
	d, err := holiday.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, "date must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}
	if err := checkYear(d.Year); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := rt.service.Check(r.Context(), d)
	if err != nil {
		rt.writeResolveError(w, d.Year, err)
		return
	}
	writeJSON(w, status, http.StatusOK)
}

func (rt *Routes) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := rt.service.InvalidateAll(r.Context()); err != nil {
		rt.logger.Error("Failed to clear cache", zap.Error(err))
		writeError(w, "failed to clear cache", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Cache cleared successfully"}, http.StatusOK)
}

func (rt *Routes) invalidateYear(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := rt.service.Invalidate(r.Context(), year); err != nil {
		rt.logger.Error("Failed to invalidate cache", zap.Int("year", year), zap.Error(err))
		writeError(w, "failed to invalidate cache", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"message": "Cache entry invalidated", "year": year}, http.StatusOK)
}

// resolveQuery resolves ?year=, defaulting to the current year
func (rt *Routes) resolveQuery(w http.ResponseWriter, r *http.Request) (holiday.YearResult, bool) {
	year := dateutil.CurrentYear(rt.clock)
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := parseYear(raw)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return holiday.YearResult{}, false
		}
		year = parsed
	}
	return rt.resolve(w, r, year)
}

func (rt *Routes) resolvePath(w http.ResponseWriter, r *http.Request) (holiday.YearResult, bool) {
	year, err := pathYear(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return holiday.YearResult{}, false
	}
	return rt.resolve(w, r, year)
}

func (rt *Routes) resolve(w http.ResponseWriter, r *http.Request, year int) (holiday.YearResult, bool) {
	result, err := rt.service.Resolve(r.Context(), year)
	if err != nil {
		rt.writeResolveError(w, year, err)
		return holiday.YearResult{}, false
	}
	return result, true
}

func (rt *Routes) writeResolveError(w http.ResponseWriter, year int, err error) {
	var exhausted *resolver.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		writeJSON(w, ErrorResponse{
			Error:    "all sources exhausted",
			Year:     exhausted.Year,
			Attempts: exhausted.Attempts,
			Hints:    errors.GetAllHints(err),
		}, http.StatusBadGateway)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, "request canceled", http.StatusServiceUnavailable)
	default:
		rt.logger.Error("Failed to resolve holidays", zap.Int("year", year), zap.Error(err))
		writeError(w, "error fetching holidays", http.StatusInternalServerError)
	}
}

func pathYear(r *http.Request) (int, error) {
	return parseYear(chi.URLParam(r, "year"))
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf("invalid year %q", raw)
	}
	if err := checkYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return errors.Newf("Year must be between %d and %d", MinYear, MaxYear)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

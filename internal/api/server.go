// Package api provides the REST API for Hungarian holidays.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/metrics"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Service is the resolution surface the handlers need
type Service interface {
	Resolve(ctx context.Context, year int) (holiday.YearResult, error)
	Check(ctx context.Context, d holiday.Date) (holiday.DayStatus, error)
	Invalidate(ctx context.Context, year int) error
	InvalidateAll(ctx context.Context) error
}

// ServerOption configures the API server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	metrics     *metrics.Metrics
	clock       dateutil.Clock
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetrics exposes m on /metrics
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metrics = m
	}
}

// WithClock sets the clock used for the default year and health timestamps
func WithClock(clock dateutil.Clock) ServerOption {
	return func(cfg *serverConfig) {
		cfg.clock = clock
	}
}

// NewServer creates and configures the HTTP router
func NewServer(svc Service, logger *zap.Logger, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		clock: dateutil.SystemClock{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	routes := &Routes{service: svc, clock: cfg.clock, logger: logger}

	r.Get("/", routes.root)
	r.Get("/health", routes.health)
	r.Get("/holidays", routes.holidaysByQuery)
	r.Get("/holidays/{year}", routes.holidaysByPath)
	r.Get("/holidays-only", routes.holidaysOnly)
	r.Get("/workdays", routes.workdaysByQuery)
	r.Get("/workdays/{year}", routes.workdaysByPath)
	r.Get("/check/{date}", routes.check)
	r.Post("/cache/clear", routes.clearCache)
	r.Delete("/cache/{year}", routes.invalidateYear)
	r.Method(http.MethodGet, "/metrics", cfg.metrics.Handler())

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

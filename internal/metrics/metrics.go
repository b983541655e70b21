// Package metrics exposes Prometheus instruments for holiday resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hu_holidays"

// Attempt outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeUnsupported  = "unsupported"
	OutcomeUnreachable  = "unreachable"
	OutcomeParseFailure = "parse_failure"
	OutcomeCanceled     = "canceled"
	OutcomeExhausted    = "exhausted"
	OutcomeCacheHit     = "cache_hit"
)

// Metrics holds the instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

// New creates the instruments on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Source fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of year resolutions in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.attempts,
		m.cacheLookups,
		m.resolveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordAttempt counts one adapter invocation
func (m *Metrics) RecordAttempt(source, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(source, outcome).Inc()
}

// RecordCacheLookup counts a cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveResolve records how long a resolution took
func (m *Metrics) ObserveResolve(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.RecordAttempt("PontosIdo.com", OutcomeUnreachable)
	m.RecordAttempt("PontosIdo.com", OutcomeUnreachable)
	m.RecordAttempt("Unnepnapok.com", OutcomeSuccess)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.ObserveResolve(OutcomeSuccess, 250*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("PontosIdo.com", OutcomeUnreachable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("Unnepnapok.com", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.resolveDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAttempt("x", OutcomeSuccess)
		m.RecordCacheLookup(true)
		m.ObserveResolve(OutcomeExhausted, time.Second)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordAttempt("MFA.gov.hu (Official)", OutcomeParseFailure)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hu_holidays_source_attempts_total{outcome="parse_failure",source="MFA.gov.hu (Official)"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

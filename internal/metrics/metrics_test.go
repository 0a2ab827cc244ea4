package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration(t *testing.T) {
	m := New()

	m.RecordGeneration(10*time.Millisecond, 4, 2, nil)
	m.RecordGeneration(time.Millisecond, 0, 0, nil)
	m.RecordGeneration(time.Millisecond, 3, 0, errors.New("boom"))

	assert.Equal(t, 7.0, testutil.ToFloat64(m.CandidatesScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("error")))
}

func TestRecordTaxonomyReload(t *testing.T) {
	m := New()

	m.RecordTaxonomyReload(nil)
	m.RecordTaxonomyReload(errors.New("bad yaml"))
	m.RecordTaxonomyReload(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TaxonomyReloads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaxonomyReloads.WithLabelValues("failure")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordGeneration(time.Second, 1, 1, nil)
		m.RecordPersistFailure()
		m.RecordDomainGroup("technical")
		m.RecordTaxonomyReload(nil)
		m.RecordRateLimited()
		m.RecordAPIRequest("GET", "/health", 200, time.Millisecond)
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordPersistFailure()
	m.RecordAPIRequest(http.MethodGet, "/suggestions/{user_id}", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "connect_suggestion_persist_failures_total 1")
	assert.Contains(t, string(body), `connect_http_requests_total{method="GET",route="/suggestions/{user_id}",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

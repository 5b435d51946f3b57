package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveBatch("SMA", "", time.Millisecond)
	m.ObserveBatch("SMA", "insufficient data", time.Millisecond)
	m.ObserveStep(time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchTotal.WithLabelValues("SMA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchErrors.WithLabelValues("SMA", "insufficient data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsTotal))

	// a second set on the same registry must collide
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveBatch("SMA", "", time.Millisecond)
	m.ObserveStep(time.Millisecond)
}

func TestHealthStatus_ServeHTTP(t *testing.T) {
	h := NewHealthStatus()

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		return rec
	}

	// nothing to depend on
	rec := serve()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	failing := true
	h.Register("sqlite", func(context.Context) error {
		if failing {
			return errors.New("database is locked")
		}
		return nil
	})

	// registered but never checked
	assert.False(t, h.Healthy())

	h.Check(context.Background())
	rec = serve()
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), "database is locked")

	failing = false
	h.Check(context.Background())
	rec = serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sqlite":{"ok":true`)
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveScan(20*time.Millisecond, 3)
	pr.IncTransformed(2)
	pr.IncSkipped(SkipProcessed)
	pr.IncSkipped(SkipProcessed)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["chatmd_scans_total"])
	assert.Equal(t, 3.0, values["chatmd_message_roots_total"])
	assert.Equal(t, 2.0, values["chatmd_elements_transformed_total"])
	assert.Equal(t, 2.0, values["chatmd_skipped_total"])
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncTransformed(1)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chatmd_elements_transformed_total 1")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveScan(time.Second, 1)
	r.IncTransformed(1)
	r.IncSkipped(SkipDisabled)
}

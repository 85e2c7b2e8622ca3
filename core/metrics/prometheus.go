package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	scanDuration prom.Histogram
	scans        prom.Counter
	roots        prom.Counter
	transformed  prom.Counter
	skipped      *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		scanDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "chatmd",
			Name:      "scan_duration_seconds",
			Help:      "Duration of document scans",
			Buckets:   prom.DefBuckets,
		}),
		scans: prom.NewCounter(prom.CounterOpts{
			Namespace: "chatmd",
			Name:      "scans_total",
			Help:      "Number of document scans",
		}),
		roots: prom.NewCounter(prom.CounterOpts{
			Namespace: "chatmd",
			Name:      "message_roots_total",
			Help:      "Message roots visited by scans",
		}),
		transformed: prom.NewCounter(prom.CounterOpts{
			Namespace: "chatmd",
			Name:      "elements_transformed_total",
			Help:      "Elements whose content was replaced with markup",
		}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "chatmd",
			Name:      "skipped_total",
			Help:      "Roots or elements left untouched, by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(pr.scanDuration, pr.scans, pr.roots, pr.transformed, pr.skipped)
	return pr
}

func (p *PrometheusRecorder) ObserveScan(d time.Duration, roots int) {
	p.scans.Inc()
	p.scanDuration.Observe(d.Seconds())
	p.roots.Add(float64(roots))
}

func (p *PrometheusRecorder) IncTransformed(n int) {
	p.transformed.Add(float64(n))
}

func (p *PrometheusRecorder) IncSkipped(reason SkipReason) {
	p.skipped.WithLabelValues(string(reason)).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

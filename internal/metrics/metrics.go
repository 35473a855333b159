package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the domain collectors. A nil *Metrics records nothing, so
// components can be built without a registry in tests and tools.
type Metrics struct {
	loadFallbacks   *prometheus.CounterVec
	persistFailures prometheus.Counter
	exports         *prometheus.CounterVec
	exportDuration  prometheus.Histogram
	exportPages     prometheus.Histogram
	assists         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loadFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_store_load_fallbacks_total",
			Help: "Stored documents discarded in favour of the seed document.",
		}, []string{"reason"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_store_persist_failures_total",
			Help: "Failed writes of a document snapshot.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_exports_total",
			Help: "Export attempts by result.",
		}, []string{"result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_export_duration_seconds",
			Help:    "Wall time of successful exports.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
		exportPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_export_pages",
			Help:    "Page count of exported documents.",
			Buckets: []float64{1, 2, 3, 4, 6, 10},
		}),
		assists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_ai_assist_total",
			Help: "AI assist requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.loadFallbacks, m.persistFailures, m.exports, m.exportDuration, m.exportPages, m.assists} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) LoadFallback(reason string) {
	if m == nil {
		return
	}
	m.loadFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) PersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) Export(result string, took time.Duration, pages int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result).Inc()
	if result == "ok" {
		m.exportDuration.Observe(took.Seconds())
		m.exportPages.Observe(float64(pages))
	}
}

func (m *Metrics) Assist(kind, outcome string) {
	if m == nil {
		return
	}
	m.assists.WithLabelValues(kind, outcome).Inc()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// coordination service.
type Metrics struct {
	RequestsSubmitted prometheus.Counter
	RequestsFinalized *prometheus.CounterVec // labels: outcome={complete,timeout}
	ActiveRequests    prometheus.Gauge
	RequestDuration   prometheus.Histogram

	ReportsReceived *prometheus.CounterVec // labels: specialist
	ReportsLate     prometheus.Counter

	// External data source metrics.
	SourceRequests *prometheus.CounterVec   // labels: source, outcome={success,error}
	SourceDuration *prometheus.HistogramVec // labels: source
	SourceCache    *prometheus.CounterVec   // labels: result={hit,miss}

	// Synthesis / planning metrics.
	SynthRequests *prometheus.CounterVec // labels: step={plan,select,synthesize}, outcome={success,fallback}

	ReportsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsSubmitted,
		m.RequestsFinalized,
		m.ActiveRequests,
		m.RequestDuration,
		m.ReportsReceived,
		m.ReportsLate,
		m.SourceRequests,
		m.SourceDuration,
		m.SourceCache,
		m.SynthRequests,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "requests_submitted_total",
			Help:      "Total simulation requests accepted at ingress.",
		}),
		RequestsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "requests_finalized_total",
			Help:      "Requests finalized, by outcome.",
		}, []string{"outcome"}),
		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landscape_sim",
			Name:      "active_requests",
			Help:      "Requests currently collecting specialist reports.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landscape_sim",
			Name:      "request_duration_seconds",
			Help:      "Time from submission to final report.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}),
		ReportsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "specialist_reports_total",
			Help:      "Specialist reports received by the coordinator.",
		}, []string{"specialist"}),
		ReportsLate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "specialist_reports_late_total",
			Help:      "Reports that arrived after their request was finalized.",
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "source_requests_total",
			Help:      "External data source calls by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "landscape_sim",
			Name:      "source_duration_seconds",
			Help:      "External data source call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "source_cache_total",
			Help:      "Source result cache lookups by result.",
		}, []string{"result"}),
		SynthRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "synthesis_requests_total",
			Help:      "Planning and synthesis calls by step and outcome.",
		}, []string{"step", "outcome"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landscape_sim",
			Name:      "reports_published_total",
			Help:      "Final reports published to the downstream topic.",
		}),
	}
}

// Package observability holds the service's logging and metrics plumbing.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	AnalysisDuration  *prometheus.HistogramVec
	AnalysisRuns      *prometheus.CounterVec
	InsightsGenerated prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	HTTPDuration      *prometheus.HistogramVec
	GraphsIngested    prometheus.Counter
}

// NewMetrics registers all instruments on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netgraph",
			Name:      "analysis_phase_duration_seconds",
			Help:      "Duration of each analysis phase.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"phase"}),
		AnalysisRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netgraph",
			Name:      "analysis_runs_total",
			Help:      "Completed analysis runs by outcome.",
		}, []string{"outcome"}),
		InsightsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "netgraph",
			Name:      "insights_generated_total",
			Help:      "Insights persisted across all runs.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "netgraph",
			Name:      "graph_cache_hits_total",
			Help:      "Graph cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "netgraph",
			Name:      "graph_cache_misses_total",
			Help:      "Graph cache misses.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netgraph",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		GraphsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "netgraph",
			Name:      "graphs_ingested_total",
			Help:      "Graphs accepted by the ingestion pipeline.",
		}),
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysisPhase records one phase duration.
func (m *Metrics) ObserveAnalysisPhase(phase string, d time.Duration) {
	m.AnalysisDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// Package metrics defines the Prometheus metric collectors used across the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RankingsTotal        *prometheus.CounterVec
	RankingLatency       *prometheus.HistogramVec
	RankingResultsCount  prometheus.Histogram
	AlignmentsTotal      prometheus.Counter
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	ListEventsTotal      *prometheus.CounterVec
	SnapshotsSavedTotal  *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		RankingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankings_computed_total",
				Help: "Total leaderboard computations by entity kind.",
			},
			[]string{"kind"},
		),
		RankingLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranking_latency_seconds",
				Help:    "Leaderboard computation latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		RankingResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ranking_results_count",
				Help:    "Number of items returned per ranking request.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
			},
		),
		AlignmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "alignments_scored_total",
				Help: "Total alignment scoring requests.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of ranking cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of ranking cache misses.",
			},
		),
		ListEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "list_events_consumed_total",
				Help: "Total endorsement-list change events consumed by outcome.",
			},
			[]string{"outcome"},
		),
		SnapshotsSavedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_snapshots_total",
				Help: "Total analytics snapshot saves by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RankingsTotal,
		m.RankingLatency,
		m.RankingResultsCount,
		m.AlignmentsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ListEventsTotal,
		m.SnapshotsSavedTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

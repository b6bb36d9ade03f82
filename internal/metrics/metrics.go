// Package metrics provides Prometheus metrics for the deck matcher service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Matcher Metrics
	MatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_match_outcomes_total",
			Help: "Entry resolution outcomes by terminal status",
		},
		[]string{"status"}, // "auto_matched", "ambiguous", "not_found", "manual_selected"
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deck_resolution_duration_seconds",
			Help:    "Time taken to resolve a full decklist",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ResolutionEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deck_resolution_entries",
			Help:    "Number of entries per resolved decklist",
			Buckets: []float64{1, 5, 15, 40, 60, 75, 100, 250},
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deck_sessions_active",
			Help: "Resolution sessions currently held in memory",
		},
	)

	// Catalog Metrics
	CatalogVariants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deck_catalog_variants",
			Help: "Number of variants in the active catalog",
		},
	)

	CatalogRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_catalog_refreshes_total",
			Help: "Catalog refresh attempts by result",
		},
		[]string{"result"}, // "ok", "parse_error", "fetch_error", "fallback"
	)

	CatalogParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deck_catalog_parse_duration_seconds",
			Help:    "Time taken to parse and index a raw catalog",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
	)

	// Export Metrics
	ExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deck_exports_total",
			Help: "Total number of CSV exports generated",
		},
	)
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "catalog_search"

// Search and catalog Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search queries by outcome",
		},
		[]string{"outcome"}, // "ok" / "no_results" / "catalog_unavailable" / "invalid"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Number of results returned per search by kind",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10},
		},
		[]string{"kind"},
	)

	NarrativeFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_fallbacks_total",
			Help:      "Narratives produced by the deterministic template, by reason",
		},
		[]string{"reason"}, // "disabled" / "error" / "timeout" / "empty" / "quota"
	)

	CatalogRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refreshes_total",
			Help:      "Catalog snapshot refreshes by result",
		},
		[]string{"result"}, // "ok" / "stale" / "mirror" / "partial" / "empty"
	)

	CatalogItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_items",
			Help:      "Items in the served catalog snapshot by kind",
		},
		[]string{"kind"},
	)

	CatalogSnapshotTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_snapshot_timestamp_seconds",
			Help:      "Unix time the served catalog snapshot was fetched",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search and catalog metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(NarrativeFallbacksTotal)
	prometheus.MustRegister(CatalogRefreshesTotal)
	prometheus.MustRegister(CatalogItems)
	prometheus.MustRegister(CatalogSnapshotTimestamp)
	searchMetricsRegistered = true
}

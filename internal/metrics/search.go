package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search path labels.
const (
	PathNative  = "native"
	PathLocal   = "local"
	PathSkipped = "skipped" // empty query vector, no ranker invoked
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "search_requests_total",
			Help:      "Searches answered, by the path that produced the result",
		},
		[]string{"path"},
	)

	SearchFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "search_fallback_total",
			Help:      "Native searches that failed and fell back to the exact scan",
		},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synapse",
			Name:      "search_duration_seconds",
			Help:      "Ranking duration in seconds, by path",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "synapse",
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	QueryClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "query_classifications_total",
			Help:      "Query classifier outcomes by inferred type",
		},
		[]string{"query_type"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(QueryClassificationsTotal)
	searchMetricsRegistered = true
}

// SearchRecorder reports search telemetry into the package-level collectors.
type SearchRecorder struct{}

// ObserveSearch records one answered search.
func (SearchRecorder) ObserveSearch(path string, d time.Duration, results int) {
	SearchRequestsTotal.WithLabelValues(path).Inc()
	if path != PathSkipped {
		SearchDuration.WithLabelValues(path).Observe(d.Seconds())
	}
	SearchResults.Observe(float64(results))
}

// ObserveFallback records a native-to-local transition.
func (SearchRecorder) ObserveFallback() {
	SearchFallbackTotal.Inc()
}

// ObserveClassification records the query type the classifier settled on.
func (SearchRecorder) ObserveClassification(queryType string) {
	QueryClassificationsTotal.WithLabelValues(queryType).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion Prometheus metrics.
var (
	IngestItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "ingest_items_total",
			Help:      "Total number of item submissions by type and outcome",
		},
		[]string{"type", "status"},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synapse",
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end ingestion latency including enrichment and embedding",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"type"},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestItemsTotal)
	prometheus.MustRegister(IngestDuration)
	ingestMetricsRegistered = true
}

// IngestRecorder reports ingestion telemetry into the package-level collectors.
type IngestRecorder struct{}

// ObserveIngest records one submission.
func (IngestRecorder) ObserveIngest(itemType, status string, d time.Duration) {
	if itemType == "" {
		itemType = "unknown"
	}
	IngestItemsTotal.WithLabelValues(itemType, status).Inc()
	IngestDuration.WithLabelValues(itemType).Observe(d.Seconds())
}

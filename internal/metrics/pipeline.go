package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voxdata",
			Name:      "query_duration_seconds",
			Help:      "Query pipeline execution time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"dataset", "outcome"},
	)

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voxdata",
			Name:      "queries_total",
			Help:      "Total pipeline queries by dataset and outcome",
		},
		[]string{"dataset", "outcome"},
	)

	registerOnce sync.Once
)

// RegisterPipelineMetrics registers the pipeline collectors explicitly
// (no init side effects). Safe to call more than once.
func RegisterPipelineMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(queryDuration)
		prometheus.MustRegister(queriesTotal)
	})
}

// ObserveQuery records one pipeline execution. Outcomes: ok, error,
// unknown_dataset.
func ObserveQuery(dataset, outcome string, d time.Duration) {
	queryDuration.WithLabelValues(dataset, outcome).Observe(d.Seconds())
	queriesTotal.WithLabelValues(dataset, outcome).Inc()
}

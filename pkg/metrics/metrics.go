// Package metrics provides Prometheus metrics for fern.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SeedingWritesTotal tracks node and relationship writes by kind
	SeedingWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "seeding",
			Name:      "writes_total",
			Help:      "Total number of graph writes performed while seeding, by kind",
		},
		[]string{"kind"},
	)

	// SeedingRunsTotal tracks seeding runs by outcome (seeded, skipped, failed)
	SeedingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "seeding",
			Name:      "runs_total",
			Help:      "Total number of seeding runs by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationsTotal tracks recommendations emitted per report
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Name:      "recommendations_total",
			Help:      "Total number of recommendations produced, by report",
		},
		[]string{"report"},
	)

	// StoreQueryDuration tracks graph store statement duration
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Duration of graph store statements in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"query"},
	)
)

// RecordSeedingWrite increments the write counter for a node or relationship kind.
func RecordSeedingWrite(kind string) {
	SeedingWritesTotal.WithLabelValues(kind).Inc()
}

// RecordSeedingRun increments the run counter for an outcome.
func RecordSeedingRun(outcome string) {
	SeedingRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordRecommendations adds n to the counter of a report.
func RecordRecommendations(report string, n int) {
	RecommendationsTotal.WithLabelValues(report).Add(float64(n))
}

// ObserveQuery records the elapsed time since start for a named statement.
func ObserveQuery(query string, start time.Time) {
	StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// Package observability provides metrics and tracing instrumentation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glimpse_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FollowMutations counts follow graph mutations by kind (follow, unfollow).
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_follow_mutations_total",
		Help: "Total number of follow graph mutations",
	}, []string{"kind"})

	// LikeToggles counts like toggles by outcome (liked, unliked).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// StorageOperations counts image store operations by bucket and operation.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_storage_operations_total",
		Help: "Total number of image store operations",
	}, []string{"bucket", "operation"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

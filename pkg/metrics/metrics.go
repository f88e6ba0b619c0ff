// Package metrics provides Prometheus instrumentation for store operations.
//
// All methods are nil-safe: a nil *StoreMetrics records nothing, so callers
// can wire metrics in optionally with zero overhead when disabled.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/podstore/pkg/resource"
)

// StoreMetrics tracks resource store operation counts and latencies.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics registers store metrics with the given registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	return &StoreMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstore_operations_total",
				Help: "Total number of resource store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "podstore_operation_duration_seconds",
				Help:    "Resource store operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe records one completed operation.
func (m *StoreMetrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// outcome buckets an error into a stable label value.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var storeErr *resource.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code.String()
	}
	return "error"
}

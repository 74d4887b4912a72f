// The metrics package exposes the Prometheus metrics of the workload bindings.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts the workload operations by operation and status
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flockbench_operations_total",
			Help: "The total number of workload operations issued to the edge store",
		},
		[]string{"operation", "status"},
	)

	// OperationDurationSeconds measures the latency of workload operations
	OperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flockbench_operation_duration_seconds",
			Help:    "Duration of workload operations, client round trips included",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	// EdgesWrittenTotal counts the edges sent to the edge store by insert and update
	EdgesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flockbench_edges_written_total",
			Help: "Total number of edges sent to the edge store",
		},
	)

	// EdgesReturnedTotal counts the edges returned by read and scan
	EdgesReturnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flockbench_edges_returned_total",
			Help: "Total number of edges returned by the edge store",
		},
		[]string{"operation"},
	)
)

// ObserveOperation() records the outcome and latency of one operation.
func ObserveOperation(operation, status string, elapsed time.Duration) {
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDurationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

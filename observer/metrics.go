package observer

import (
	plantagent "github.com/plantagent/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NodeMetrics is a Prometheus-backed plantagent.Metrics. It tracks per-node
// duration and outcome for the workflow coordinator.
//
// Usage:
//
//	metrics := observer.NewNodeMetrics()
//	coord := plantagent.NewCoordinator(..., plantagent.WithMetrics(metrics))
type NodeMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewNodeMetrics registers the coordinator's node metrics with Prometheus's
// default registry and returns a plantagent.Metrics.
func NewNodeMetrics() *NodeMetrics {
	return &NodeMetrics{
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantagent_node_duration_seconds",
				Help:    "Duration of workflow node execution in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"node", "status"},
		),
		total: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantagent_node_total",
				Help: "Total number of workflow node executions by status",
			},
			[]string{"node", "status"},
		),
	}
}

// ObserveNode records a node's duration and outcome.
func (m *NodeMetrics) ObserveNode(node string, status plantagent.Status, durationMs int64) {
	labels := prometheus.Labels{"node": node, "status": string(status)}
	m.total.With(labels).Inc()
	m.duration.With(labels).Observe(float64(durationMs) / 1000)
}

var _ plantagent.Metrics = (*NodeMetrics)(nil)

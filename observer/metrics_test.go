package observer

import (
	"testing"

	plantagent "github.com/plantagent/core"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNodeMetrics_ObserveNode(t *testing.T) {
	m := NewNodeMetrics()

	m.ObserveNode("graph_agent", plantagent.StatusSuccess, 150)
	m.ObserveNode("graph_agent", plantagent.StatusError, 50)
	m.ObserveNode("maintenance_agent", plantagent.StatusSkipped, 0)

	if count := testutil.CollectAndCount(m.total); count != 3 {
		t.Errorf("expected 3 label combinations, got %d", count)
	}

	got := testutil.ToFloat64(m.total.WithLabelValues("graph_agent", "success"))
	if got != 1 {
		t.Errorf("expected 1 success observation for graph_agent, got %v", got)
	}
}

func TestNodeMetrics_ImplementsInterface(t *testing.T) {
	var _ plantagent.Metrics = (*NodeMetrics)(nil)
}

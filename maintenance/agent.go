// Package maintenance looks up work orders for sensors named in a graph
// result, against a remote JSON-RPC/SSE tool server.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	plantagent "github.com/plantagent/core"

	"github.com/plantagent/core/mcpclient"

	"golang.org/x/time/rate"
)

// maxSensors is the first-N-distinct-sensors rule of §4.4.
const maxSensors = 10

// toolName is the single tool this agent ever calls.
const toolName = "get_work_orders_by_sensor"

// ToolCaller is the subset of mcpclient.Client the agent depends on, so
// tests can substitute a fake without standing up an HTTP server.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, arguments any) (json.RawMessage, error)
}

// Agent is an MCP-backed MaintenanceAgent.
type Agent struct {
	client  ToolCaller
	opts    CanonicalizeOptions
	enabled bool
}

// NewAgent builds an Agent against client. If client is nil, the agent is
// disabled and Lookup always returns the graceful "unavailable" result
// (§6: absence of maintenance_mcp_url disables the agent).
func NewAgent(client *mcpclient.Client) *Agent {
	return NewAgentWithOptions(client, DefaultCanonicalizeOptions())
}

// NewAgentWithOptions builds an Agent with a non-default canonicalization
// policy.
func NewAgentWithOptions(client ToolCaller, opts CanonicalizeOptions) *Agent {
	return &Agent{client: client, opts: opts, enabled: client != nil && !isNilClient(client)}
}

// isNilClient guards against a typed-nil *mcpclient.Client satisfying the
// ToolCaller interface while being logically absent.
func isNilClient(c ToolCaller) bool {
	client, ok := c.(*mcpclient.Client)
	return ok && client == nil
}

func (a *Agent) Name() string { return "maintenance_agent" }

func (a *Agent) Lookup(ctx context.Context, graph plantagent.GraphResult) (plantagent.MaintenanceResult, error) {
	if !a.enabled {
		return plantagent.MaintenanceResult{Error: "maintenance server unavailable"}, nil
	}

	sensors := sensorNames(graph, maxSensors)

	// Token bucket seeded with exactly maxSensors tokens and a zero refill
	// rate: once spent, it never refills within the workflow's lifetime,
	// enforcing the hard per-workflow call cap (§4.4 "cap total calls at 10
	// per workflow") independent of how sensorNames is bounded above.
	limiter := rate.NewLimiter(rate.Limit(0), maxSensors)

	var workOrders []plantagent.WorkOrder
	queried := make([]string, 0, len(sensors))
	contacted := false

	for _, original := range sensors {
		if !limiter.Allow() {
			break
		}

		canonical, _ := Canonicalize(original, a.opts)
		queried = append(queried, canonical)

		raw, err := a.client.CallTool(ctx, toolName, map[string]any{"sensor_name": canonical})
		if err != nil {
			var protoErr *plantagent.ErrToolProtocol
			if !contacted && errors.As(err, &protoErr) {
				// The very first call never got a response at the
				// transport/session level — this is an initialize failure,
				// not a single bad sensor. §4.4: the whole agent reports
				// "maintenance server unavailable" rather than an empty
				// per-sensor result.
				return plantagent.MaintenanceResult{Error: "maintenance server unavailable"}, nil
			}
			// Once the server has answered at least once, a later failure
			// (ToolProtocolError from exhausted session renewal, or a
			// ToolLogicError from the server) skips that sensor and the
			// agent moves on. The sensor stays in SensorsQueried with no
			// work orders; the error itself is not recorded in the result.
			var logicErr *plantagent.ErrToolLogic
			if errors.As(err, &logicErr) {
				contacted = true
			}
			continue
		}
		contacted = true

		wos, err := decodeWorkOrders(raw, canonical, original)
		if err != nil {
			continue
		}
		workOrders = append(workOrders, wos...)
	}

	return plantagent.MaintenanceResult{
		WorkOrders:     workOrders,
		SensorsQueried: queried,
	}, nil
}

func sensorNames(graph plantagent.GraphResult, max int) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range graph.Rows {
		name := rowSensorName(row)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) >= max {
			break
		}
	}
	return names
}

func rowSensorName(row plantagent.GraphRow) string {
	for _, key := range []string{"sensor_name", "name", "s.name", "tag", "s.tag"} {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// decodeWorkOrders unmarshals the tool-call result into WorkOrders and
// stamps each with the canonicalized and original sensor names (§4.4
// "both recorded on each returned WO for traceability").
func decodeWorkOrders(raw json.RawMessage, canonical, original string) ([]plantagent.WorkOrder, error) {
	var wos []plantagent.WorkOrder
	if err := json.Unmarshal(raw, &wos); err != nil {
		return nil, fmt.Errorf("decode work orders: %w", err)
	}
	for i := range wos {
		wos[i].SensorName = canonical
		wos[i].OriginalSensorName = original
	}
	return wos, nil
}

var _ plantagent.MaintenanceAgent = (*Agent)(nil)

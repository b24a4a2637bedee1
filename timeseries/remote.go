package timeseries

import (
	"context"
	"encoding/json"
	"fmt"

	plantagent "github.com/plantagent/core"
)

// remoteToolName is the (hypothetical, per §4.5) real tool-server
// equivalent of maintenance's get_work_orders_by_sensor: same JSON-RPC/SSE
// protocol, a different tool and argument shape.
const remoteToolName = "get_recent_measurements"

// remoteCaller is the subset of mcpclient.Client the remote source depends
// on, mirroring maintenance.ToolCaller so both agents share one transport
// package without sharing a concrete type.
type remoteCaller interface {
	CallTool(ctx context.Context, name string, arguments any) (json.RawMessage, error)
}

// remoteSource calls a real time-series tool server. It returns the
// identical Measurement shape as mockSource, with is_mock = false (§4.5:
// "the data contract does not change").
type remoteSource struct {
	client remoteCaller
}

// NewRemoteSource builds a Source backed by client, for when
// time_series_use_real is true.
func NewRemoteSource(client remoteCaller) Source {
	return &remoteSource{client: client}
}

func (r *remoteSource) Measurements(ctx context.Context, sensors []string) ([]plantagent.Measurement, bool, error) {
	var out []plantagent.Measurement
	for _, sensor := range sensors {
		raw, err := r.client.CallTool(ctx, remoteToolName, map[string]any{"sensor_name": sensor})
		if err != nil {
			return nil, false, fmt.Errorf("timeseries: %s: %w", sensor, err)
		}

		var measurements []plantagent.Measurement
		if err := json.Unmarshal(raw, &measurements); err != nil {
			return nil, false, fmt.Errorf("timeseries: decode %s: %w", sensor, err)
		}
		out = append(out, measurements...)
	}
	return out, false, nil
}

var _ Source = (*remoteSource)(nil)

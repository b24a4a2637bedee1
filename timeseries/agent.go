package timeseries

import (
	"context"

	plantagent "github.com/plantagent/core"
)

// maxSensors is the first-20-sensors rule of §4.5.
const maxSensors = 20

// Agent is a Source-backed TimeSeriesAgent. Swapping mockSource for
// remoteSource changes nothing about the contract — only is_mock on the
// result.
type Agent struct {
	source Source
}

// NewAgent builds an Agent over source. Use NewMockSource() or
// NewRemoteSource(client) depending on the time_series_use_real
// configuration flag (§6).
func NewAgent(source Source) *Agent {
	return &Agent{source: source}
}

func (a *Agent) Name() string { return "time_series_agent" }

func (a *Agent) Lookup(ctx context.Context, graph plantagent.GraphResult) (plantagent.TimeSeriesResult, error) {
	sensors := sensorNames(graph, maxSensors)

	measurements, isMock, err := a.source.Measurements(ctx, sensors)
	if err != nil {
		return plantagent.TimeSeriesResult{Error: err.Error()}, nil
	}

	var anomalies []plantagent.Measurement
	for _, m := range measurements {
		if m.Anomalous {
			anomalies = append(anomalies, m)
		}
	}

	return plantagent.TimeSeriesResult{
		Measurements: measurements,
		Anomalies:    anomalies,
		IsMock:       isMock,
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

var _ plantagent.TimeSeriesAgent = (*Agent)(nil)

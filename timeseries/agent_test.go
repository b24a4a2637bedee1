package timeseries

import (
	"context"
	"errors"
	"testing"

	plantagent "github.com/plantagent/core"
)

type fakeSource struct {
	measurements []plantagent.Measurement
	isMock       bool
	err          error
	gotSensors   []string
}

func (f *fakeSource) Measurements(ctx context.Context, sensors []string) ([]plantagent.Measurement, bool, error) {
	f.gotSensors = sensors
	if f.err != nil {
		return nil, false, f.err
	}
	return f.measurements, f.isMock, nil
}

func graphWithSensors(names ...string) plantagent.GraphResult {
	rows := make([]plantagent.GraphRow, len(names))
	for i, n := range names {
		rows[i] = plantagent.GraphRow{"s.name": n}
	}
	return plantagent.GraphResult{Rows: rows, RowCount: len(rows)}
}

func TestAgent_Lookup_SplitsAnomalies(t *testing.T) {
	source := &fakeSource{
		isMock: true,
		measurements: []plantagent.Measurement{
			{SensorName: "a", Value: 1},
			{SensorName: "a", Value: 999, Anomalous: true},
		},
	}
	agent := NewAgent(source)

	result, err := agent.Lookup(t.Context(), graphWithSensors("a"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(result.Measurements) != 2 {
		t.Errorf("expected 2 measurements, got %d", len(result.Measurements))
	}
	if len(result.Anomalies) != 1 {
		t.Errorf("expected 1 anomaly, got %d", len(result.Anomalies))
	}
	if !result.IsMock {
		t.Error("expected IsMock true")
	}
}

func TestAgent_Lookup_CapsAtTwentySensors(t *testing.T) {
	names := make([]string, 25)
	for i := range names {
		names[i] = "sensor" + string(rune('a'+i%26))
	}
	source := &fakeSource{}
	agent := NewAgent(source)

	_, err := agent.Lookup(t.Context(), graphWithSensors(names...))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(source.gotSensors) != maxSensors {
		t.Errorf("expected %d sensors passed to source, got %d", maxSensors, len(source.gotSensors))
	}
}

func TestAgent_Lookup_SourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("tool server unavailable")}
	agent := NewAgent(source)

	result, err := agent.Lookup(t.Context(), graphWithSensors("a"))
	if err != nil {
		t.Fatalf("Lookup should surface source errors as a result error, got %v", err)
	}
	if result.Error == "" {
		t.Fatal("expected an error result")
	}
}

func TestAgent_Name(t *testing.T) {
	agent := NewAgent(&fakeSource{})
	if agent.Name() != "time_series_agent" {
		t.Errorf("expected time_series_agent, got %s", agent.Name())
	}
}

var _ plantagent.TimeSeriesAgent = (*Agent)(nil)

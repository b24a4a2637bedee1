package timeseries

import (
	"context"
	"math/rand"
	"time"

	plantagent "github.com/plantagent/core"
)

// measurementsPerSensor is the fixed sample size per §4.5.
const measurementsPerSensor = 5

// anomalyChance is the per-measurement probability of being flagged
// anomalous (§4.5 "20% probability").
const anomalyChance = 0.20

// mockSource synthesizes measurements without calling any external system.
// When rng is nil, each call seeds a fresh source from the current time;
// tests inject a seeded one for determinism.
type mockSource struct {
	rng *rand.Rand
}

// NewMockSource returns a Source that fabricates plausible readings,
// per-sensor unit inferred from the tag's leading letter.
func NewMockSource() Source {
	return &mockSource{}
}

// newSeededMockSource is used by tests that need reproducible anomaly
// placement.
func newSeededMockSource(seed int64) *mockSource {
	return &mockSource{rng: rand.New(rand.NewSource(seed))}
}

func (m *mockSource) Measurements(ctx context.Context, sensors []string) ([]plantagent.Measurement, bool, error) {
	rng := m.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	now := time.Now()
	var out []plantagent.Measurement
	for _, sensor := range sensors {
		unit := unitForTag(sensor)
		for i := 0; i < measurementsPerSensor; i++ {
			out = append(out, plantagent.Measurement{
				SensorName: sensor,
				Timestamp:  now.Add(-time.Duration(i) * time.Minute).UnixMilli(),
				Value:      syntheticValue(unit, rng),
				Unit:       unit,
				Anomalous:  rng.Float64() < anomalyChance,
			})
		}
	}
	return out, true, nil
}

// unitForTag infers a measurement unit from the sensor tag's function
// letter (after any area-digit prefix), per §4.5: T*->degC, P*->bar,
// L*->pct, F*->L/min, default->raw.
func unitForTag(tag string) string {
	letter := functionLetter(tag)
	switch letter {
	case 'T':
		return "degC"
	case 'P':
		return "bar"
	case 'L':
		return "pct"
	case 'F':
		return "L/min"
	default:
		return "raw"
	}
}

// functionLetter returns the first alphabetic rune in tag, which in
// instrument-tag syntax is the function code's leading letter
// (T=temperature, P=pressure, L=level, F=flow).
func functionLetter(tag string) rune {
	for _, r := range tag {
		if r >= 'A' && r <= 'Z' {
			return r
		}
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
	}
	return 0
}

func syntheticValue(unit string, rng *rand.Rand) float64 {
	switch unit {
	case "degC":
		return 15 + rng.Float64()*60 // 15-75 C
	case "bar":
		return rng.Float64() * 10 // 0-10 bar
	case "pct":
		return rng.Float64() * 100 // 0-100%
	case "L/min":
		return rng.Float64() * 500 // 0-500 L/min
	default:
		return rng.Float64() * 100
	}
}

var _ Source = (*mockSource)(nil)

// Package timeseries retrieves recent measurements and anomaly flags for
// sensors named in a graph result, either synthetically or from a remote
// tool server.
package timeseries

import (
	"context"

	plantagent "github.com/plantagent/core"
)

// Source produces measurements for a list of sensor names. mockSource
// always succeeds; remoteSource delegates to a JSON-RPC/SSE tool server.
type Source interface {
	Measurements(ctx context.Context, sensors []string) ([]plantagent.Measurement, bool, error)
}

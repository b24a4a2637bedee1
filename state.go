package plantagent

import "sync"

// IntentResult is the output of the intent classifier: which downstream
// agents the coordinator should schedule.
type IntentResult struct {
	NeedsGraph       bool `json:"needs_graph"`
	NeedsMaintenance bool `json:"needs_maintenance"`
	NeedsTimeSeries  bool `json:"needs_time_series"`
}

// GraphRow is one row of a graph query result, with graph-native values
// (nodes, dates) already flattened to scalar/map fields.
type GraphRow map[string]any

// GraphResult is the output of the graph agent.
type GraphResult struct {
	Cypher   string     `json:"cypher"`
	Rows     []GraphRow `json:"rows"`
	RowCount int        `json:"row_count"` // pre-truncation count
	Error    string     `json:"error,omitempty"`
}

// WorkOrder is a single maintenance record returned by the maintenance tool
// server, attributed to the sensor it concerns.
type WorkOrder struct {
	Nr                 string `json:"nr"`
	ShortDescription   string `json:"short_description"`
	Description        string `json:"description"`
	Comment            string `json:"comment"`
	Status             int    `json:"status"` // 1, 7, or 8
	Priority           int    `json:"priority"`
	FromDate           string `json:"from_date"`
	ToDate             string `json:"to_date"`
	FinishedDate       string `json:"finished_date,omitempty"`
	URL                string `json:"url,omitempty"`
	SensorName         string `json:"sensor_name"`          // canonicalized
	OriginalSensorName string `json:"original_sensor_name"` // as read from the graph
}

// MaintenanceResult is the output of the maintenance agent.
type MaintenanceResult struct {
	WorkOrders     []WorkOrder `json:"work_orders"`
	SensorsQueried []string    `json:"sensors_queried"`
	Error          string      `json:"error,omitempty"`
}

// Measurement is a single synthetic or real time-series reading.
type Measurement struct {
	SensorName string  `json:"sensor_name"`
	Timestamp  int64   `json:"timestamp"` // unix millis
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Anomalous  bool    `json:"anomalous"`
}

// TimeSeriesResult is the output of the time-series agent.
type TimeSeriesResult struct {
	Measurements []Measurement `json:"measurements"`
	Anomalies    []Measurement `json:"anomalies"`
	IsMock       bool          `json:"is_mock"`
	Error        string        `json:"error,omitempty"`
}

// Synthesis is the output of the synthesizer.
type Synthesis struct {
	Text         string   `json:"text"`
	CitedAgents  []string `json:"cited_agents"`
}

// WorkflowState is the shared, incrementally-populated record threaded
// through a single workflow run. It is created fresh per request and
// discarded once the response is serialized — no cross-request state exists
// in the core.
//
// The coordinator is the sole writer: every merge* method is called only
// from the coordinator's goroutine, except during the maintenance/
// time-series fanout where both branches write distinct top-level fields
// concurrently, hence the mutex.
type WorkflowState struct {
	mu sync.Mutex

	RunID    string
	Question string
	Scope    *ScopeHint

	Intent            *IntentResult
	GraphResult       *GraphResult
	MaintenanceResult *MaintenanceResult
	TimeSeriesResult  *TimeSeriesResult
	Synthesis         *Synthesis

	Trace  []NodeTrace
	Errors []string
}

// NewWorkflowState creates the initial state for a run, stamped with a
// fresh run ID used to correlate its trace and span across logs, metrics,
// and the returned RunResult.
func NewWorkflowState(question string, scope *ScopeHint) *WorkflowState {
	return &WorkflowState{RunID: NewID(), Question: question, Scope: scope}
}

// mergeIntent records the intent classifier's result. Called once, before
// any other agent starts, so it needs no locking.
func (s *WorkflowState) mergeIntent(r IntentResult) {
	s.Intent = &r
}

// mergeGraph records the graph agent's result. Called once, before the
// maintenance/time-series fanout starts, so it needs no locking.
func (s *WorkflowState) mergeGraph(r GraphResult) {
	s.GraphResult = &r
}

// mergeMaintenance records the maintenance agent's result. Safe to call
// concurrently with mergeTimeSeries — each writes a distinct field.
func (s *WorkflowState) mergeMaintenance(r MaintenanceResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaintenanceResult = &r
}

// mergeTimeSeries records the time-series agent's result. Safe to call
// concurrently with mergeMaintenance — each writes a distinct field.
func (s *WorkflowState) mergeTimeSeries(r TimeSeriesResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TimeSeriesResult = &r
}

// mergeSynthesis records the synthesizer's result. Called once, last.
func (s *WorkflowState) mergeSynthesis(r Synthesis) {
	s.Synthesis = &r
}

// appendTrace appends a completed node's trace entry and, for error/skipped
// statuses with a message, the corresponding user-facing error string. Safe
// for concurrent callers (fanout branches).
func (s *WorkflowState) appendTrace(t NodeTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Trace = append(s.Trace, t)
	if t.Error != "" {
		s.Errors = append(s.Errors, t.Error)
	}
}

// graphSucceeded reports whether the graph node ran and completed without
// error — the gate every downstream agent must pass (§3 invariant 4).
func (s *WorkflowState) graphSucceeded() bool {
	return s.GraphResult != nil && s.GraphResult.Error == ""
}

// sensorNames returns up to max distinct sensor names found in the graph
// result's rows, in row order. Each row's name is the first non-empty string
// among its "sensor_name", "name", "s.name" and "tag" keys.
func (s *WorkflowState) sensorNames(max int) []string {
	if s.GraphResult == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, row := range s.GraphResult.Rows {
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

func rowSensorName(row GraphRow) string {
	for _, key := range []string{"sensor_name", "name", "s.name", "tag"} {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

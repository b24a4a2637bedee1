package plantagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Timeouts bounds how long each node, and the workflow as a whole, may run
// before being marked a timeout failure (§4.1).
type Timeouts struct {
	Graph       time.Duration
	Maintenance time.Duration
	TimeSeries  time.Duration
	Synthesizer time.Duration
	Workflow    time.Duration
}

// DefaultTimeouts returns the budget from §4.1: graph 10s, maintenance 15s,
// time-series 10s, synthesizer 20s, workflow 45s.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Graph:       10 * time.Second,
		Maintenance: 15 * time.Second,
		TimeSeries:  10 * time.Second,
		Synthesizer: 20 * time.Second,
		Workflow:    45 * time.Second,
	}
}

// Coordinator owns the fixed five-node workflow graph — intent
// classification, graph lookup, the maintenance/time-series fanout, and
// synthesis — and dispatches it over a shared WorkflowState. It is the
// sole writer of that state; every agent returns an immutable result which
// the coordinator assigns.
type Coordinator struct {
	intent      IntentClassifier
	graph       GraphAgent
	maintenance MaintenanceAgent
	timeSeries  TimeSeriesAgent
	synth       Synthesizer

	timeouts Timeouts
	logger   *slog.Logger
	tracer   Tracer
	metrics  Metrics
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the structured logger used for node-level log lines.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// WithTracer sets the Tracer used to open a span per node and a parent span
// for the whole run. Defaults to no tracing.
func WithTracer(t Tracer) CoordinatorOption {
	return func(c *Coordinator) { c.tracer = t }
}

// WithTimeouts overrides the default §4.1 timeout budget.
func WithTimeouts(t Timeouts) CoordinatorOption {
	return func(c *Coordinator) { c.timeouts = t }
}

// WithMetrics sets the Metrics sink used to record node duration and
// outcome. Defaults to no metrics.
func WithMetrics(m Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator builds a Coordinator from the five agent implementations.
func NewCoordinator(intent IntentClassifier, graph GraphAgent, maintenance MaintenanceAgent, timeSeries TimeSeriesAgent, synth Synthesizer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		intent:      intent,
		graph:       graph,
		maintenance: maintenance,
		timeSeries:  timeSeries,
		synth:       synth,
		timeouts:    DefaultTimeouts(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the workflow for a single question. It never returns a
// non-nil error for an agent-level failure — those are captured in
// RunResult.Errors and the trace. A non-nil error here signals a bug in the
// coordinator itself (§7 InternalBug).
func (c *Coordinator) Run(ctx context.Context, question string, scope *ScopeHint) (result RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WorkflowError{Node: "coordinator", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	state := NewWorkflowState(question, scope)

	callerCtx := ctx
	var span Span
	if c.tracer != nil {
		ctx, span = c.tracer.Start(ctx, "workflow.run", StringAttr("run_id", state.RunID), StringAttr("question", question))
		defer span.End()
	}

	workflowCtx, cancel := context.WithTimeout(ctx, c.timeouts.Workflow)
	defer cancel()

	c.runIntent(workflowCtx, state)

	if errors.Is(callerCtx.Err(), context.Canceled) {
		return c.cancelledResult(state), nil
	}

	if state.Intent.NeedsGraph {
		c.runGraph(workflowCtx, state)

		if errors.Is(callerCtx.Err(), context.Canceled) {
			return c.cancelledResult(state), nil
		}

		switch {
		case state.Intent.NeedsMaintenance && state.Intent.NeedsTimeSeries:
			c.runFanout(workflowCtx, state)
		case state.Intent.NeedsMaintenance:
			c.runMaintenance(workflowCtx, state, *state.GraphResult)
		case state.Intent.NeedsTimeSeries:
			c.runTimeSeries(workflowCtx, state, *state.GraphResult)
		}

		if errors.Is(callerCtx.Err(), context.Canceled) {
			return c.cancelledResult(state), nil
		}
	}

	// The synthesizer runs under its own deadline. If the workflow deadline
	// was exceeded (not caller cancellation), it still synthesizes from
	// whatever state exists, budgeted against the original caller ctx.
	synthParent := workflowCtx
	if errors.Is(workflowCtx.Err(), context.DeadlineExceeded) {
		synthParent = callerCtx
	}
	synthCtx, synthCancel := context.WithTimeout(synthParent, c.timeouts.Synthesizer)
	defer synthCancel()

	c.runSynthesizer(synthCtx, state)

	if errors.Is(callerCtx.Err(), context.Canceled) {
		return c.cancelledResult(state), nil
	}

	return RunResult{
		RunID:  state.RunID,
		Answer: synthesisText(state.Synthesis),
		Trace:  state.Trace,
		Errors: nonNil(state.Errors),
	}, nil
}

func (c *Coordinator) cancelledResult(state *WorkflowState) RunResult {
	return RunResult{
		RunID:  state.RunID,
		Trace:  state.Trace,
		Errors: []string{"cancelled"},
	}
}

func synthesisText(s *Synthesis) string {
	if s == nil {
		return ""
	}
	return s.Text
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (c *Coordinator) recordMetric(trace NodeTrace) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveNode(trace.AgentName, trace.Status, trace.DurationMs)
}

func (c *Coordinator) startSpan(ctx context.Context, name string) (context.Context, Span) {
	if c.tracer == nil {
		return ctx, noopSpan{}
	}
	return c.tracer.Start(ctx, name)
}

// noopSpan is used when no tracer is configured, so node code never needs a
// nil check.
type noopSpan struct{}

func (noopSpan) SetAttr(...SpanAttr)    {}
func (noopSpan) Event(string, ...SpanAttr) {}
func (noopSpan) Error(error)            {}
func (noopSpan) End()                   {}

func (c *Coordinator) runIntent(ctx context.Context, state *WorkflowState) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "intent_classifier")
	defer span.End()

	result, err := c.intent.Classify(ctx, state.Question, state.Scope)
	trace := NodeTrace{
		AgentName: c.intent.Name(),
		StartedAt: start.UnixMilli(),
	}
	if err != nil {
		span.Error(err)
		c.logger.Warn("intent classification failed, falling back to safe defaults", "error", err)
		// §4.2 fail-open: the safest overlap when the LLM is unreachable or
		// returns something the classifier couldn't parse.
		result = IntentResult{NeedsGraph: true, NeedsMaintenance: true, NeedsTimeSeries: false}
		trace.Status = StatusSuccess
		trace.Summary = "intent classification failed, used fallback flags"
	} else {
		trace.Status = StatusSuccess
		trace.Summary = fmt.Sprintf("needs_graph=%t needs_maintenance=%t needs_time_series=%t",
			result.NeedsGraph, result.NeedsMaintenance, result.NeedsTimeSeries)
	}
	trace.DurationMs = time.Since(start).Milliseconds()
	trace.Output = result

	state.mergeIntent(result)
	state.appendTrace(trace)
	c.recordMetric(trace)
	c.logger.Info("node completed", "run_id", state.RunID, "node", trace.AgentName, "status", trace.Status, "duration_ms", trace.DurationMs)
}

func (c *Coordinator) runGraph(ctx context.Context, state *WorkflowState) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Graph)
	defer cancel()
	ctx, span := c.startSpan(ctx, "graph_agent")
	defer span.End()

	start := time.Now()
	result, err := c.graph.Query(ctx, state.Question, state.Scope)
	trace := NodeTrace{AgentName: c.graph.Name(), StartedAt: start.UnixMilli(), DurationMs: time.Since(start).Milliseconds()}

	switch {
	case err != nil:
		span.Error(err)
		trace.Status = StatusError
		trace.Error = errMessage(ctx, err)
		result = GraphResult{Error: trace.Error}
	case result.Error != "":
		trace.Status = StatusError
		trace.Error = result.Error
	default:
		trace.Status = StatusSuccess
		trace.Summary = fmt.Sprintf("%d rows (of %d)", len(result.Rows), result.RowCount)
	}
	trace.Output = result

	state.mergeGraph(result)
	state.appendTrace(trace)
	c.recordMetric(trace)
	c.logger.Info("node completed", "run_id", state.RunID, "node", trace.AgentName, "status", trace.Status, "duration_ms", trace.DurationMs)
}

func (c *Coordinator) runFanout(ctx context.Context, state *WorkflowState) {
	snapshot := *state.GraphResult
	g := new(errgroup.Group)
	g.Go(func() error {
		c.runMaintenance(ctx, state, snapshot)
		return nil
	})
	g.Go(func() error {
		c.runTimeSeries(ctx, state, snapshot)
		return nil
	})
	_ = g.Wait() // node-level errors are captured into trace, never returned here
}

func (c *Coordinator) runMaintenance(ctx context.Context, state *WorkflowState, snapshot GraphResult) {
	start := time.Now()
	trace := NodeTrace{AgentName: c.maintenance.Name(), StartedAt: start.UnixMilli()}

	if !state.graphSucceeded() {
		trace.Status = StatusSkipped
		trace.DurationMs = time.Since(start).Milliseconds()
		state.appendTrace(trace)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Maintenance)
	defer cancel()
	ctx, span := c.startSpan(ctx, "maintenance_agent")
	defer span.End()

	result, err := c.maintenance.Lookup(ctx, snapshot)
	trace.DurationMs = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		span.Error(err)
		trace.Status = StatusError
		trace.Error = errMessage(ctx, err)
		result = MaintenanceResult{Error: trace.Error}
	case result.Error != "":
		trace.Status = StatusError
		trace.Error = result.Error
	default:
		trace.Status = StatusSuccess
		trace.Summary = fmt.Sprintf("%d work orders across %d sensors", len(result.WorkOrders), len(result.SensorsQueried))
	}
	trace.Output = result

	state.mergeMaintenance(result)
	state.appendTrace(trace)
	c.recordMetric(trace)
	c.logger.Info("node completed", "run_id", state.RunID, "node", trace.AgentName, "status", trace.Status, "duration_ms", trace.DurationMs)
}

func (c *Coordinator) runTimeSeries(ctx context.Context, state *WorkflowState, snapshot GraphResult) {
	start := time.Now()
	trace := NodeTrace{AgentName: c.timeSeries.Name(), StartedAt: start.UnixMilli()}

	if !state.graphSucceeded() {
		trace.Status = StatusSkipped
		trace.DurationMs = time.Since(start).Milliseconds()
		state.appendTrace(trace)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.TimeSeries)
	defer cancel()
	ctx, span := c.startSpan(ctx, "time_series_agent")
	defer span.End()

	result, err := c.timeSeries.Lookup(ctx, snapshot)
	trace.DurationMs = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		span.Error(err)
		trace.Status = StatusError
		trace.Error = errMessage(ctx, err)
		result = TimeSeriesResult{Error: trace.Error}
	case result.Error != "":
		trace.Status = StatusError
		trace.Error = result.Error
	default:
		trace.Status = StatusSuccess
		trace.Summary = fmt.Sprintf("%d measurements, %d anomalies", len(result.Measurements), len(result.Anomalies))
	}
	trace.Output = result

	state.mergeTimeSeries(result)
	state.appendTrace(trace)
	c.recordMetric(trace)
	c.logger.Info("node completed", "run_id", state.RunID, "node", trace.AgentName, "status", trace.Status, "duration_ms", trace.DurationMs)
}

func (c *Coordinator) runSynthesizer(ctx context.Context, state *WorkflowState) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "synthesizer")
	defer span.End()

	result, err := c.synth.Synthesize(ctx, state)
	trace := NodeTrace{
		AgentName:  c.synth.Name(),
		StartedAt:  start.UnixMilli(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		// §4.6: synthesis errors are never fatal; the synthesizer
		// implementation is expected to fall back to a deterministic
		// template, but guard here too.
		span.Error(err)
		c.logger.Warn("synthesis failed, using minimal fallback text", "error", err)
		result = Synthesis{Text: "I wasn't able to compose a full answer, but the workflow trace above reflects what was retrieved."}
		trace.Status = StatusSuccess
	} else {
		trace.Status = StatusSuccess
	}
	trace.Summary = truncateSummary(result.Text)
	trace.Output = result

	state.mergeSynthesis(result)
	state.appendTrace(trace)
	c.recordMetric(trace)
	c.logger.Info("node completed", "run_id", state.RunID, "node", trace.AgentName, "status", trace.Status, "duration_ms", trace.DurationMs)
}

// errMessage classifies a node-level timeout against a generic error so the
// trace carries "timeout" per §7/§8 rather than a raw context error string.
func errMessage(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

func truncateSummary(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max]
}

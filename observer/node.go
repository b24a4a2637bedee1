package observer

import (
	"context"

	plantagent "github.com/plantagent/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// statusString maps a node's error outcome to the "ok"/"error" span/log
// label, matching the teacher's ObservedAgent status convention.
func statusString(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObservedIntentClassifier wraps a plantagent.IntentClassifier to emit an
// OTEL span per Classify call, the intent-classifier equivalent of the
// teacher's ObservedAgent.Execute wrapper.
type ObservedIntentClassifier struct {
	inner  plantagent.IntentClassifier
	tracer trace.Tracer
}

// WrapIntentClassifier returns an instrumented IntentClassifier.
func WrapIntentClassifier(inner plantagent.IntentClassifier) *ObservedIntentClassifier {
	return &ObservedIntentClassifier{inner: inner, tracer: otel.Tracer(scopeName)}
}

func (o *ObservedIntentClassifier) Name() string { return o.inner.Name() }

func (o *ObservedIntentClassifier) Classify(ctx context.Context, question string, scope *plantagent.ScopeHint) (plantagent.IntentResult, error) {
	ctx, span := o.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrNodeName.String(o.inner.Name()),
		AttrAgentName.String(o.inner.Name()),
	))
	defer span.End()

	result, err := o.inner.Classify(ctx, question, scope)
	recordOutcome(span, err)
	return result, err
}

// ObservedGraphAgent wraps a plantagent.GraphAgent to emit an OTEL span per
// Query call.
type ObservedGraphAgent struct {
	inner  plantagent.GraphAgent
	tracer trace.Tracer
}

// WrapGraphAgent returns an instrumented GraphAgent.
func WrapGraphAgent(inner plantagent.GraphAgent) *ObservedGraphAgent {
	return &ObservedGraphAgent{inner: inner, tracer: otel.Tracer(scopeName)}
}

func (o *ObservedGraphAgent) Name() string { return o.inner.Name() }

func (o *ObservedGraphAgent) Query(ctx context.Context, question string, scope *plantagent.ScopeHint) (plantagent.GraphResult, error) {
	ctx, span := o.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrNodeName.String(o.inner.Name()),
		AttrAgentName.String(o.inner.Name()),
	))
	defer span.End()

	result, err := o.inner.Query(ctx, question, scope)
	recordOutcome(span, err)
	return result, err
}

// ObservedMaintenanceAgent wraps a plantagent.MaintenanceAgent to emit an
// OTEL span per Lookup call. The lookup delegates to a maintenance tool
// server, so the span also carries AttrToolName, the natural equivalent of
// the teacher's ObservedTool.Execute wrapper.
type ObservedMaintenanceAgent struct {
	inner  plantagent.MaintenanceAgent
	tracer trace.Tracer
}

// WrapMaintenanceAgent returns an instrumented MaintenanceAgent.
func WrapMaintenanceAgent(inner plantagent.MaintenanceAgent) *ObservedMaintenanceAgent {
	return &ObservedMaintenanceAgent{inner: inner, tracer: otel.Tracer(scopeName)}
}

func (o *ObservedMaintenanceAgent) Name() string { return o.inner.Name() }

func (o *ObservedMaintenanceAgent) Lookup(ctx context.Context, graph plantagent.GraphResult) (plantagent.MaintenanceResult, error) {
	ctx, span := o.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrNodeName.String(o.inner.Name()),
		AttrAgentName.String(o.inner.Name()),
		AttrToolName.String("maintenance_mcp"),
	))
	defer span.End()

	result, err := o.inner.Lookup(ctx, graph)
	recordOutcome(span, err)
	return result, err
}

// ObservedTimeSeriesAgent wraps a plantagent.TimeSeriesAgent to emit an OTEL
// span per Lookup call, tagged with AttrToolName for the time-series
// backend it queries.
type ObservedTimeSeriesAgent struct {
	inner  plantagent.TimeSeriesAgent
	tracer trace.Tracer
}

// WrapTimeSeriesAgent returns an instrumented TimeSeriesAgent.
func WrapTimeSeriesAgent(inner plantagent.TimeSeriesAgent) *ObservedTimeSeriesAgent {
	return &ObservedTimeSeriesAgent{inner: inner, tracer: otel.Tracer(scopeName)}
}

func (o *ObservedTimeSeriesAgent) Name() string { return o.inner.Name() }

func (o *ObservedTimeSeriesAgent) Lookup(ctx context.Context, graph plantagent.GraphResult) (plantagent.TimeSeriesResult, error) {
	ctx, span := o.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrNodeName.String(o.inner.Name()),
		AttrAgentName.String(o.inner.Name()),
		AttrToolName.String("time_series_source"),
	))
	defer span.End()

	result, err := o.inner.Lookup(ctx, graph)
	recordOutcome(span, err)
	return result, err
}

// ObservedSynthesizer wraps a plantagent.Synthesizer to emit an OTEL span
// per Synthesize call.
type ObservedSynthesizer struct {
	inner  plantagent.Synthesizer
	tracer trace.Tracer
}

// WrapSynthesizer returns an instrumented Synthesizer.
func WrapSynthesizer(inner plantagent.Synthesizer) *ObservedSynthesizer {
	return &ObservedSynthesizer{inner: inner, tracer: otel.Tracer(scopeName)}
}

func (o *ObservedSynthesizer) Name() string { return o.inner.Name() }

func (o *ObservedSynthesizer) Synthesize(ctx context.Context, state *plantagent.WorkflowState) (plantagent.Synthesis, error) {
	ctx, span := o.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrNodeName.String(o.inner.Name()),
		AttrAgentName.String(o.inner.Name()),
	))
	defer span.End()

	result, err := o.inner.Synthesize(ctx, state)
	recordOutcome(span, err)
	return result, err
}

// recordOutcome sets the node/agent status attributes and, on error, records
// it against the span.
func recordOutcome(span trace.Span, err error) {
	status := statusString(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		AttrNodeStatus.String(status),
		AttrAgentStatus.String(status),
	)
}

// compile-time checks
var (
	_ plantagent.IntentClassifier = (*ObservedIntentClassifier)(nil)
	_ plantagent.GraphAgent       = (*ObservedGraphAgent)(nil)
	_ plantagent.MaintenanceAgent = (*ObservedMaintenanceAgent)(nil)
	_ plantagent.TimeSeriesAgent  = (*ObservedTimeSeriesAgent)(nil)
	_ plantagent.Synthesizer      = (*ObservedSynthesizer)(nil)
)

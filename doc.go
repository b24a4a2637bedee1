// Package plantagent implements the multi-agent orchestration core that
// answers natural-language questions about an industrial plant.
//
// A [Coordinator] runs a fixed five-node workflow — intent classification,
// graph lookup, maintenance lookup, time-series lookup, and synthesis — over
// a shared [WorkflowState], tolerating partial agent failure so the
// synthesizer can still produce a useful answer.
//
// # Quick start
//
//	coord := plantagent.NewCoordinator(
//		intent.New(llm),
//		graph.NewAgent(store, llm),
//		maintenance.NewAgent(mcpClient),
//		timeseries.NewAgent(timeseries.NewMockSource()),
//		synth.NewAgent(llm),
//	)
//	result, err := coord.Run(ctx, "What sensors are in area 40-10?", nil)
//
// # Core interfaces
//
//   - [Provider] — LLM chat-completion backend
//   - [Node] — the name every workflow step exposes; each step kind adds its
//     own typed method ([IntentClassifier], [GraphAgent], ...)
//   - [Tracer] / [Span] — OpenTelemetry-shaped tracing hooks
//
// The HTTP surface, CSV ingestion, navigation UI, and authentication that
// front this core are out of scope — see SPEC_FULL.md.
package plantagent

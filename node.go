package plantagent

import "context"

// Node is the common capability every workflow step exposes: a name, used
// for trace entries, logging, and span naming. The coordinator depends on
// this capability plus one of the typed contracts below — never a concrete
// type — per the state-machine design of §9 ("agent polymorphism").
type Node interface {
	Name() string
}

// IntentClassifier decides which downstream agents a question requires.
type IntentClassifier interface {
	Node
	Classify(ctx context.Context, question string, scope *ScopeHint) (IntentResult, error)
}

// GraphAgent translates a question into a Cypher query and executes it.
type GraphAgent interface {
	Node
	Query(ctx context.Context, question string, scope *ScopeHint) (GraphResult, error)
}

// MaintenanceAgent looks up work orders for sensors named in a graph
// result. graph is an immutable snapshot — the maintenance agent never
// mutates it.
type MaintenanceAgent interface {
	Node
	Lookup(ctx context.Context, graph GraphResult) (MaintenanceResult, error)
}

// TimeSeriesAgent looks up recent measurements for sensors named in a graph
// result. graph is an immutable snapshot — the time-series agent never
// mutates it.
type TimeSeriesAgent interface {
	Node
	Lookup(ctx context.Context, graph GraphResult) (TimeSeriesResult, error)
}

// Synthesizer composes the final natural-language answer from whatever
// agent outputs exist in state. It only reads state; the coordinator
// assigns the result.
type Synthesizer interface {
	Node
	Synthesize(ctx context.Context, state *WorkflowState) (Synthesis, error)
}

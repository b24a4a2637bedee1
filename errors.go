package plantagent

import "fmt"

// ErrLLM wraps a failure from an LLM chat-completion call.
type ErrLLM struct {
	Provider string
	Message  string
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ErrHTTP wraps a non-2xx HTTP response from an outbound call (LLM, graph
// store, or tool server). RetryAfter is parsed from the response header when
// present, in seconds; zero means none was sent.
type ErrHTTP struct {
	Status     int
	Body       string
	RetryAfter int
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrTimeout reports that a node or the overall workflow exceeded its
// deadline (§4.1 of SPEC_FULL.md).
type ErrTimeout struct {
	Node string
}

func (e *ErrTimeout) Error() string {
	if e.Node == "" {
		return "timeout"
	}
	return fmt.Sprintf("%s: timeout", e.Node)
}

// ErrCancelled reports that the caller cancelled the request before the
// workflow reached the synthesizer.
type ErrCancelled struct{}

func (e *ErrCancelled) Error() string { return "cancelled" }

// ErrCypherRejected reports that the graph agent's generated Cypher
// contained a write clause and was rejected before execution.
type ErrCypherRejected struct {
	Clause string
}

func (e *ErrCypherRejected) Error() string {
	return fmt.Sprintf("write clause rejected: %s", e.Clause)
}

// ErrToolProtocol reports a transport or session failure talking to a
// remote JSON-RPC tool server (initialize failed, transport error, exhausted
// session-renewal retry).
type ErrToolProtocol struct {
	Op      string
	Message string
}

func (e *ErrToolProtocol) Error() string {
	return fmt.Sprintf("tool protocol (%s): %s", e.Op, e.Message)
}

// ErrToolLogic reports that a remote JSON-RPC tool call returned a
// well-formed JSON-RPC error object (as opposed to a transport failure).
type ErrToolLogic struct {
	Sensor  string
	Code    int
	Message string
}

func (e *ErrToolLogic) Error() string {
	return fmt.Sprintf("tool error for sensor %s: %d %s", e.Sensor, e.Code, e.Message)
}

// WorkflowError is returned by Coordinator.Run only for a bug in the
// coordinator itself (InternalBug in SPEC_FULL.md's error taxonomy). Every
// other failure mode — agent errors, timeouts, cancellation — is captured in
// RunResult.Errors and never returned as an error from Run.
type WorkflowError struct {
	Node string
	Err  error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("internal workflow bug at node %q: %v", e.Node, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

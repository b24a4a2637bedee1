package plantagent

import "encoding/json"

// --- LLM protocol types ---

type ChatMessage struct {
	Role        string          `json:"role"` // "system", "user", "assistant", "tool"
	Content     string          `json:"content"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	ToolCalls   []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallID  string          `json:"tool_call_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"` // provider-specific
}

// Attachment represents binary content (image, PDF, audio, etc.) sent inline
// to a multimodal LLM. MimeType determines how the provider interprets Base64.
type Attachment struct {
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

type ToolCall struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Args     json.RawMessage `json:"args"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ResponseSchema asks the provider to enforce structured JSON output. The
// openaicompat provider sends it as a json_schema response_format; the
// anthropic provider ignores it.
type ResponseSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

type ChatRequest struct {
	Messages       []ChatMessage   `json:"messages"`
	ResponseSchema *ResponseSchema `json:"response_schema,omitempty"`
}

type ChatResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Usage     Usage      `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}

func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: text}
}

func ToolResultMessage(callID, content string) ChatMessage {
	return ChatMessage{Role: "tool", Content: content, ToolCallID: callID}
}

// --- Request / result types ---

// ScopeHint narrows a question to a subtree of the plant hierarchy. All
// fields are optional; a zero-value ScopeHint imposes no constraint.
type ScopeHint struct {
	NodeType   string `json:"node_type,omitempty"` // "plant", "area", "equipment", "sensor"
	NodeName   string `json:"node_name,omitempty"`
	Plant      string `json:"plant,omitempty"`
	Area       string `json:"area,omitempty"`
	Equipment  string `json:"equipment,omitempty"`
	ScopeDepth int    `json:"scope_depth,omitempty"` // max hop count from NodeName, 0 = unconstrained
	Breadcrumb string `json:"breadcrumb,omitempty"`  // human-readable path, e.g. "Plant A / Area 40 / Pump 10"
}

// Status is the outcome of a single node's execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// NodeTrace is one entry in a RunResult's execution trace — the structured
// record of what a single agent did, how long it took, and whether it
// succeeded.
type NodeTrace struct {
	AgentName  string `json:"agent_name"`
	Status     Status `json:"status"`
	StartedAt  int64  `json:"started_at"` // unix millis
	DurationMs int64  `json:"duration_ms"`
	Summary    string `json:"summary,omitempty"` // <=200 chars
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunResult is the top-level response of a completed (or partially
// completed) workflow run.
type RunResult struct {
	RunID  string      `json:"run_id"`
	Answer string      `json:"answer"`
	Trace  []NodeTrace `json:"trace"`
	Errors []string    `json:"errors"`
}

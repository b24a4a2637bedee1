package plantagent

import "context"

// Provider abstracts the LLM backend used by intent classification, Cypher
// generation, and synthesis.
type Provider interface {
	// Chat sends a request and returns a complete response.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// ChatWithTools sends a request with tool definitions, returns response (may contain tool calls).
	ChatWithTools(ctx context.Context, req ChatRequest, tools []ToolDefinition) (ChatResponse, error)
	// Name returns the provider name (e.g. "anthropic", "openai").
	Name() string
}

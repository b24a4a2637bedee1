package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	plantagent "github.com/plantagent/core"
)

type fakeProvider struct {
	content string
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Chat(ctx context.Context, req plantagent.ChatRequest) (plantagent.ChatResponse, error) {
	if f.err != nil {
		return plantagent.ChatResponse{}, f.err
	}
	return plantagent.ChatResponse{Content: f.content}, nil
}

func (f *fakeProvider) ChatWithTools(ctx context.Context, req plantagent.ChatRequest, tools []plantagent.ToolDefinition) (plantagent.ChatResponse, error) {
	return f.Chat(ctx, req)
}

func TestClassify_PlainJSON(t *testing.T) {
	p := &fakeProvider{content: `{"needs_graph":true,"needs_maintenance":false,"needs_time_series":true}`}
	c := New(p)

	result, err := c.Classify(context.Background(), "show me the trend for pump 4010", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !result.NeedsGraph || result.NeedsMaintenance || !result.NeedsTimeSeries {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestClassify_StripsCodeFences(t *testing.T) {
	p := &fakeProvider{content: "```json\n{\"needs_graph\":true,\"needs_maintenance\":true,\"needs_time_series\":false}\n```"}
	c := New(p)

	result, err := c.Classify(context.Background(), "any open work orders on the feed pump?", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !result.NeedsGraph || !result.NeedsMaintenance {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestClassify_StripsBareCodeFence(t *testing.T) {
	p := &fakeProvider{content: "```\n{\"needs_graph\":false,\"needs_maintenance\":false,\"needs_time_series\":false}\n```"}
	c := New(p)

	result, err := c.Classify(context.Background(), "good morning", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.NeedsGraph || result.NeedsMaintenance || result.NeedsTimeSeries {
		t.Errorf("expected all-false for off-domain question, got %+v", result)
	}
}

func TestClassify_CoercesGraphWhenDownstreamNeeded(t *testing.T) {
	p := &fakeProvider{content: `{"needs_graph":false,"needs_maintenance":true,"needs_time_series":false}`}
	c := New(p)

	result, err := c.Classify(context.Background(), "maintenance history for the feed pump", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !result.NeedsGraph {
		t.Error("expected needs_graph to be coerced to true when needs_maintenance is true")
	}
}

func TestClassify_MalformedJSONReturnsError(t *testing.T) {
	p := &fakeProvider{content: "I think you need the graph agent."}
	c := New(p)

	_, err := c.Classify(context.Background(), "what sensors are on pump 4010", nil)
	if err == nil {
		t.Fatal("expected error for unparseable reply")
	}
	var llmErr *plantagent.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *plantagent.ErrLLM, got %T", err)
	}
}

func TestClassify_ProviderErrorWraps(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	c := New(p)

	_, err := c.Classify(context.Background(), "what sensors are on pump 4010", nil)
	if err == nil {
		t.Fatal("expected error when provider call fails")
	}
	var llmErr *plantagent.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *plantagent.ErrLLM, got %T", err)
	}
}

func TestClassify_PromptIncludesScope(t *testing.T) {
	var seen string
	p := &scopeCapturingProvider{fakeProvider: fakeProvider{content: `{"needs_graph":true,"needs_maintenance":false,"needs_time_series":false}`}, captured: &seen}
	c := New(p)

	_, err := c.Classify(context.Background(), "what sensors does it have", &plantagent.ScopeHint{NodeType: "area", NodeName: "Area51"})
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if seen == "" {
		t.Fatal("expected provider to receive a prompt")
	}
	if !strings.Contains(seen, "Area51") {
		t.Errorf("prompt %q does not include the scope", seen)
	}
}

type scopeCapturingProvider struct {
	fakeProvider
	captured *string
}

func (p *scopeCapturingProvider) Chat(ctx context.Context, req plantagent.ChatRequest) (plantagent.ChatResponse, error) {
	if len(req.Messages) > 0 {
		*p.captured = req.Messages[len(req.Messages)-1].Content
	}
	return p.fakeProvider.Chat(ctx, req)
}

func TestName(t *testing.T) {
	c := New(&fakeProvider{})
	if c.Name() != "intent_classifier" {
		t.Errorf("expected name 'intent_classifier', got %q", c.Name())
	}
}

package synth

import (
	"context"
	"errors"
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

func stateWithGraphOnly() *plantagent.WorkflowState {
	s := plantagent.NewWorkflowState("What sensors are in area 40-10?", nil)
	intent := plantagent.IntentResult{NeedsGraph: true}
	s.Intent = &intent
	return s
}

func TestAgent_Synthesize_OffDomainSkipsLLM(t *testing.T) {
	s := plantagent.NewWorkflowState("Hello", nil)
	intent := plantagent.IntentResult{}
	s.Intent = &intent
	agent := NewAgent(&fakeProvider{content: "should not be used"})

	result, err := agent.Synthesize(t.Context(), s)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected non-empty refusal text")
	}
	if result.Text == "should not be used" {
		t.Error("expected the refusal text, got the LLM reply")
	}
}

func TestAgent_Synthesize_UsesLLMReply(t *testing.T) {
	s := stateWithGraphOnly()
	agent := NewAgent(&fakeProvider{content: "There are 9 sensors in area 40-10."})

	result, err := agent.Synthesize(t.Context(), s)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.Text != "There are 9 sensors in area 40-10." {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestAgent_Synthesize_FallsBackOnLLMError(t *testing.T) {
	s := stateWithGraphOnly()
	s.Trace = []plantagent.NodeTrace{
		{AgentName: "intent_classifier", Status: plantagent.StatusSuccess},
		{AgentName: "graph_agent", Status: plantagent.StatusSuccess, Summary: "9 rows (of 9)"},
	}
	agent := NewAgent(&fakeProvider{err: errors.New("connection refused")})

	result, err := agent.Synthesize(t.Context(), s)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected non-empty fallback text")
	}
}

func TestAgent_Synthesize_FallsBackOnEmptyReply(t *testing.T) {
	s := stateWithGraphOnly()
	s.Trace = []plantagent.NodeTrace{
		{AgentName: "graph_agent", Status: plantagent.StatusSuccess, Summary: "9 rows (of 9)"},
	}
	agent := NewAgent(&fakeProvider{content: "   "})

	result, err := agent.Synthesize(t.Context(), s)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected non-empty fallback text")
	}
}

func TestAgent_Synthesize_NeverFails(t *testing.T) {
	s := stateWithGraphOnly()
	agent := NewAgent(&fakeProvider{err: errors.New("boom")})
	_, err := agent.Synthesize(t.Context(), s)
	if err != nil {
		t.Fatalf("Synthesize must never return an error, got %v", err)
	}
}

func TestAgent_Name(t *testing.T) {
	agent := NewAgent(&fakeProvider{})
	if agent.Name() != "synthesizer" {
		t.Errorf("expected synthesizer, got %s", agent.Name())
	}
}

var _ plantagent.Synthesizer = (*Agent)(nil)

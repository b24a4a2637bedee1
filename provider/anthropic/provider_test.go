package anthropic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	plantagent "github.com/plantagent/core"
)

func TestProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("x-api-key"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != defaultModel {
			t.Errorf("expected model %s, got %v", defaultModel, body["model"])
		}
		system, _ := body["system"].([]any)
		if len(system) != 1 {
			t.Errorf("expected a single system block, got %v", body["system"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "msg_1",
			"type":    "message",
			"role":    "assistant",
			"model":   defaultModel,
			"content": []map[string]any{{"type": "text", "text": "Hello!"}},
			"usage":   map[string]any{"input_tokens": 5, "output_tokens": 2},
		})
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := p.Chat(t.Context(), plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{
			plantagent.SystemMessage("You are helpful."),
			plantagent.UserMessage("Hi"),
		},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "Hello!" {
		t.Errorf("expected content 'Hello!', got %q", resp.Content)
	}
	if resp.Usage.InputTokens != 5 || resp.Usage.OutputTokens != 2 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestProvider_ChatWithTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		tools, _ := body["tools"].([]any)
		if len(tools) != 1 {
			t.Fatalf("expected 1 tool, got %v", body["tools"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_2",
			"type":  "message",
			"role":  "assistant",
			"model": defaultModel,
			"content": []map[string]any{{
				"type":  "tool_use",
				"id":    "toolu_1",
				"name":  "get_weather",
				"input": map[string]any{"city": "London"},
			}},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 8},
		})
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tools := []plantagent.ToolDefinition{{
		Name:        "get_weather",
		Description: "Get weather",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
	}}

	resp, err := p.ChatWithTools(t.Context(), plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{plantagent.UserMessage("Weather in London?")},
	}, tools)
	if err != nil {
		t.Fatalf("ChatWithTools: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Name != "get_weather" {
		t.Errorf("expected tool call name get_weather, got %q", resp.ToolCalls[0].Name)
	}

	var args map[string]any
	if err := json.Unmarshal(resp.ToolCalls[0].Args, &args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if args["city"] != "London" {
		t.Errorf("expected city London, got %v", args["city"])
	}
}

func TestProvider_Chat_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": "internal error"},
		})
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Chat(t.Context(), plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{plantagent.UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	httpErr, ok := err.(*plantagent.ErrHTTP)
	if !ok {
		t.Fatalf("expected *plantagent.ErrHTTP, got %T", err)
	}
	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", httpErr.Status)
	}
	if httpErr.Body != "internal error" {
		t.Errorf("expected parsed error message, got %q", httpErr.Body)
	}
}

func TestProvider_Name(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected 'anthropic', got %q", p.Name())
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNew_DefaultsModelAndMaxTokens(t *testing.T) {
	p, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != defaultModel {
		t.Errorf("expected default model %s, got %s", defaultModel, p.model)
	}
	if p.maxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens %d, got %d", defaultMaxTokens, p.maxTokens)
	}
}

func TestNew_CustomModelAndMaxTokens(t *testing.T) {
	p, err := New(Config{APIKey: "k", Model: "claude-haiku-4-5", MaxTokens: 500})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != "claude-haiku-4-5" {
		t.Errorf("expected custom model, got %s", p.model)
	}
	if p.maxTokens != 500 {
		t.Errorf("expected custom max tokens 500, got %d", p.maxTokens)
	}
}

var _ plantagent.Provider = (*Provider)(nil)

// Package anthropic is a plantagent.Provider backed by Anthropic's Messages
// API, used for the intent, Cypher-generation, and synthesis LLM calls.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	plantagent "github.com/plantagent/core"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicErrorPayload is the shape of Anthropic's JSON error body, used to
// surface a readable message rather than the raw envelope.
type anthropicErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// defaultMaxTokens is the token ceiling for every call, per spec.md §6
// ("token ceiling ≤ 2,000 per call").
const defaultMaxTokens = 2000

// defaultModel is used when Config.Model is empty.
const defaultModel = "claude-sonnet-4-5"

// Config configures a Provider. APIKey is required; everything else has a
// sensible default.
type Config struct {
	// APIKey authenticates against the Anthropic API (required).
	APIKey string

	// BaseURL overrides the default Anthropic API base URL.
	BaseURL string

	// Model is the model ID used for every call. Default: "claude-sonnet-4-5".
	Model string

	// MaxTokens overrides the default per-call token ceiling.
	MaxTokens int
}

// Provider is a plantagent.Provider backed by the Anthropic SDK. Every call
// is non-streaming: the core never reads partial tokens (spec.md Non-goals:
// "streaming partial answers").
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New builds a Provider from cfg.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client:    anthropic.NewClient(options...),
		model:     model,
		maxTokens: int64(maxTokens),
	}, nil
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Chat(ctx context.Context, req plantagent.ChatRequest) (plantagent.ChatResponse, error) {
	return p.ChatWithTools(ctx, req, nil)
}

func (p *Provider) ChatWithTools(ctx context.Context, req plantagent.ChatRequest, tools []plantagent.ToolDefinition) (plantagent.ChatResponse, error) {
	messages, system := convertMessages(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  messages,
		MaxTokens: p.maxTokens,
		// Low, deterministic-leaning temperature per spec.md §6.
		Temperature: anthropic.Float(0.1),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(tools) > 0 {
		converted, err := convertTools(tools)
		if err != nil {
			return plantagent.ChatResponse{}, &plantagent.ErrLLM{Provider: p.Name(), Message: err.Error()}
		}
		params.Tools = converted
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return plantagent.ChatResponse{}, p.wrapError(err)
	}

	return convertResponse(msg), nil
}

// wrapError turns a transport-level failure into ErrHTTP (so the
// coordinator's retry middleware can see the status code) and anything else
// into ErrLLM.
func (p *Provider) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Error()
		if raw := apiErr.RawJSON(); raw != "" {
			var payload anthropicErrorPayload
			if json.Unmarshal([]byte(raw), &payload) == nil && payload.Error.Message != "" {
				message = payload.Error.Message
			}
		}
		return &plantagent.ErrHTTP{Status: apiErr.StatusCode, Body: message}
	}
	return &plantagent.ErrLLM{Provider: p.Name(), Message: err.Error()}
}

// convertMessages splits plantagent chat messages into Anthropic message
// params plus a single system prompt string (Anthropic carries system
// separately from the message list).
func convertMessages(messages []plantagent.ChatMessage) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var system string

	for _, m := range messages {
		switch m.Role {
		case "system":
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case "tool":
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		default: // "user"
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, system
}

func convertTools(tools []plantagent.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(t.Parameters, &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", t.Name, err)
		}
		param := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if param.OfTool != nil {
			param.OfTool.Description = anthropic.String(t.Description)
		}
		out = append(out, param)
	}
	return out, nil
}

func convertResponse(msg *anthropic.Message) plantagent.ChatResponse {
	var text string
	var calls []plantagent.ToolCall
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += variant.Text
		case anthropic.ToolUseBlock:
			calls = append(calls, plantagent.ToolCall{
				ID:   variant.ID,
				Name: variant.Name,
				Args: json.RawMessage(variant.Input),
			})
		}
	}

	return plantagent.ChatResponse{
		Content:   text,
		ToolCalls: calls,
		Usage: plantagent.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
}

var _ plantagent.Provider = (*Provider)(nil)

// Package intent classifies a plant question into the set of downstream
// agents the workflow coordinator should schedule.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	plantagent "github.com/plantagent/core"
)

// systemPrompt enumerates the three flags and requires a JSON object,
// generalized from the teacher's two-way chat/action classifier to the
// three-flag contract of the coordinator's fixed graph.
const systemPrompt = `You are an intent classifier for an industrial plant question-answering system. Decide which of three downstream capabilities a question requires, and return a single JSON object with exactly these boolean fields:

{"needs_graph": bool, "needs_maintenance": bool, "needs_time_series": bool}

- needs_graph: true whenever the question requires looking up plant structure or sensors (equipment, areas, tags, "what sensors are in..."). Almost every on-domain question needs this, since maintenance and time-series lookups depend on sensor names the graph finds.
- needs_maintenance: true if the question asks about work orders, repairs, maintenance history, or equipment status/condition.
- needs_time_series: true if the question asks about measurements, trends, anomalies, or recent sensor readings.
- If needs_maintenance or needs_time_series is true, needs_graph MUST also be true.
- If the question is entirely off-domain (greetings, small talk, anything unrelated to the plant), return all three flags false.

Respond with ONLY the JSON object, no extra text, no markdown code fences.`

// Classifier is an LLM-backed IntentClassifier.
type Classifier struct {
	provider plantagent.Provider
}

// New builds a Classifier against the given provider (model is baked into
// the provider at construction, per the teacher's provider.go convention).
func New(provider plantagent.Provider) *Classifier {
	return &Classifier{provider: provider}
}

func (c *Classifier) Name() string { return "intent_classifier" }

// Classify asks the LLM which downstream agents the question needs. On any
// failure to call or parse the reply, it returns an error so the coordinator
// applies its own fail-open default — the classifier itself never silently
// substitutes a guess that the caller can't distinguish from a real answer.
func (c *Classifier) Classify(ctx context.Context, question string, scope *plantagent.ScopeHint) (plantagent.IntentResult, error) {
	req := plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{
			plantagent.SystemMessage(systemPrompt),
			plantagent.UserMessage(promptWithScope(question, scope)),
		},
	}

	resp, err := c.provider.Chat(ctx, req)
	if err != nil {
		return plantagent.IntentResult{}, &plantagent.ErrLLM{Provider: c.provider.Name(), Message: err.Error()}
	}

	return parse(resp.Content)
}

func promptWithScope(question string, scope *plantagent.ScopeHint) string {
	if scope == nil || (scope.NodeType == "" && scope.NodeName == "") {
		return question
	}
	return question + "\n\n(scope: " + scope.NodeType + " " + scope.NodeName + ")"
}

// parse extracts and decodes the classifier's JSON reply. A parse failure
// surfaces as an error rather than a guess, matching the teacher's
// extractJSON/ParseIntent split.
func parse(response string) (plantagent.IntentResult, error) {
	jsonStr := extractJSON(response)

	var parsed plantagent.IntentResult
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return plantagent.IntentResult{}, &plantagent.ErrLLM{Provider: "intent", Message: "could not parse classifier reply: " + err.Error()}
	}
	if parsed.NeedsMaintenance || parsed.NeedsTimeSeries {
		parsed.NeedsGraph = true
	}
	return parsed, nil
}

// extractJSON finds the first JSON object in a string, stripping markdown
// code fences first.
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}

	return trimmed
}

var _ plantagent.IntentClassifier = (*Classifier)(nil)

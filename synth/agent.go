// Package synth composes the workflow's final natural-language answer from
// whatever agent outputs exist in the shared state.
package synth

import (
	"context"
	"strings"

	plantagent "github.com/plantagent/core"
)

const systemPrompt = `You are the synthesis step of an industrial plant question-answering assistant. You are given the original question and a compact summary of what each internal data-retrieval step found.

Requirements:
- Write in a professional, concise, industrial tone.
- Explicitly mention which sources contributed to your answer (graph lookup, maintenance records, time-series measurements) and which, if any, were unavailable.
- Never invent a sensor name, work order number, or measurement that does not appear in the context below.
- If a requested data source was unavailable, acknowledge that explicitly rather than silently omitting it.
- If no sources succeeded and the question is off-domain, politely explain what you can help with instead.

Respond with the final answer text only, no preamble.`

// Agent is an LLM-driven Synthesizer with a deterministic fallback.
type Agent struct {
	provider plantagent.Provider
}

// NewAgent builds an Agent against provider.
func NewAgent(provider plantagent.Provider) *Agent {
	return &Agent{provider: provider}
}

func (a *Agent) Name() string { return "synthesizer" }

func (a *Agent) Synthesize(ctx context.Context, state *plantagent.WorkflowState) (plantagent.Synthesis, error) {
	if !state.Intent.NeedsGraph && !state.Intent.NeedsMaintenance && !state.Intent.NeedsTimeSeries {
		return plantagent.Synthesis{Text: politeRefusal()}, nil
	}

	contextStr := buildContext(state)
	sources := collectSources(state)

	req := plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{
			plantagent.SystemMessage(systemPrompt),
			plantagent.UserMessage("Question: " + state.Question + "\n\nRetrieved data:\n" + contextStr),
		},
	}

	resp, err := a.provider.Chat(ctx, req)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return templateFallback(state), nil
	}

	return plantagent.Synthesis{Text: resp.Content, CitedAgents: citedFrom(sources)}, nil
}

func citedFrom(s availableSources) []string {
	var cited []string
	if s.graphOK {
		cited = append(cited, "graph")
	}
	if s.maintenanceOK {
		cited = append(cited, "maintenance")
	}
	if s.timeSeriesOK {
		cited = append(cited, "time-series")
	}
	return cited
}

var _ plantagent.Synthesizer = (*Agent)(nil)

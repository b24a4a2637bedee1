package synth

import (
	"fmt"
	"strings"

	plantagent "github.com/plantagent/core"
)

// templateFallback concatenates per-agent summaries in trace order, prefixed
// by a short header, when the LLM fails or returns an empty reply (§4.6
// step 3). It never fails and never returns empty text.
func templateFallback(state *plantagent.WorkflowState) plantagent.Synthesis {
	sources := collectSources(state)

	if len(sources.attempted) == 0 {
		return plantagent.Synthesis{Text: politeRefusal()}
	}

	var b strings.Builder
	b.WriteString("Here is what I found:\n\n")

	var cited []string
	for _, trace := range state.Trace {
		switch trace.AgentName {
		case "graph_agent", "maintenance_agent", "time_series_agent":
			if trace.Status == plantagent.StatusSuccess && trace.Summary != "" {
				fmt.Fprintf(&b, "- %s: %s\n", humanLabel(trace.AgentName), trace.Summary)
				cited = append(cited, humanLabel(trace.AgentName))
			} else if trace.Status == plantagent.StatusError {
				fmt.Fprintf(&b, "- %s: unavailable (%s)\n", humanLabel(trace.AgentName), trace.Error)
			}
		}
	}

	if len(sources.failed) > 0 {
		fmt.Fprintf(&b, "\nNote: %s could not be reached for this request.\n", strings.Join(sources.failed, ", "))
	}

	return plantagent.Synthesis{Text: b.String(), CitedAgents: cited}
}

func humanLabel(agentName string) string {
	switch agentName {
	case "graph_agent":
		return "graph"
	case "maintenance_agent":
		return "maintenance"
	case "time_series_agent":
		return "time-series"
	default:
		return agentName
	}
}

func politeRefusal() string {
	return "I can help with questions about plant structure, sensors, maintenance history, or measurements — could you rephrase your question around one of those?"
}

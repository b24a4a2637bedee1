package synth

import (
	"encoding/json"
	"fmt"
	"strings"

	plantagent "github.com/plantagent/core"
)

// perAgentBudget caps each agent's excerpt in the synthesis context string
// at roughly 2KB (§4.6 step 1), mirroring the teacher's context-pruning
// philosophy of truncating with a visible note rather than silently
// dropping content.
const perAgentBudget = 2000

// buildContext renders one block per agent result present in state, each
// bounded to perAgentBudget, in node-execution order (so the LLM sees
// results in the same order the workflow produced them).
func buildContext(state *plantagent.WorkflowState) string {
	var b strings.Builder
	for _, trace := range state.Trace {
		if trace.AgentName == "synthesizer" {
			continue
		}
		if trace.Status != plantagent.StatusSuccess {
			fmt.Fprintf(&b, "## %s\nstatus: %s\n", trace.AgentName, trace.Status)
			if trace.Error != "" {
				fmt.Fprintf(&b, "error: %s\n", trace.Error)
			}
			b.WriteString("\n")
			continue
		}

		fmt.Fprintf(&b, "## %s\n", trace.AgentName)
		if trace.Summary != "" {
			fmt.Fprintf(&b, "summary: %s\n", trace.Summary)
		}
		b.WriteString(excerpt(trace.Output))
		b.WriteString("\n\n")
	}
	return b.String()
}

// excerpt marshals output to JSON and truncates it to perAgentBudget bytes,
// appending a visible elision note rather than silently cutting content
// (§4.6 step 1 "Elide rows beyond a budget").
func excerpt(output any) string {
	if output == nil {
		return ""
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return ""
	}
	if len(raw) <= perAgentBudget {
		return string(raw)
	}
	return string(raw[:perAgentBudget]) + fmt.Sprintf("\n...[truncated, %d of %d bytes shown]", perAgentBudget, len(raw))
}

// availableSources reports which agents contributed a successful result,
// and which were attempted but failed — used for the cited agents of an LLM
// answer and by the template fallback to decide tone (§4.6 step 2/3).
type availableSources struct {
	graphOK       bool
	maintenanceOK bool
	timeSeriesOK  bool
	attempted     []string
	failed        []string
}

func collectSources(state *plantagent.WorkflowState) availableSources {
	var s availableSources
	for _, trace := range state.Trace {
		switch trace.AgentName {
		case "graph_agent":
			s.attempted = append(s.attempted, "graph")
			if trace.Status == plantagent.StatusSuccess {
				s.graphOK = true
			} else if trace.Status == plantagent.StatusError {
				s.failed = append(s.failed, "graph")
			}
		case "maintenance_agent":
			s.attempted = append(s.attempted, "maintenance")
			if trace.Status == plantagent.StatusSuccess {
				s.maintenanceOK = true
			} else if trace.Status == plantagent.StatusError {
				s.failed = append(s.failed, "maintenance")
			}
		case "time_series_agent":
			s.attempted = append(s.attempted, "time-series")
			if trace.Status == plantagent.StatusSuccess {
				s.timeSeriesOK = true
			} else if trace.Status == plantagent.StatusError {
				s.failed = append(s.failed, "time-series")
			}
		}
	}
	return s
}

// Package graph translates a plant question into a Cypher query, executes
// it read-only, and serializes the result rows for downstream agents.
package graph

import (
	"context"

	plantagent "github.com/plantagent/core"
)

// hardRowCap is the maximum number of rows placed on the workflow state,
// independent of how many the store scanned (§4.3 step 4, §3 invariant 5).
const hardRowCap = 50

// Agent is an LLM-driven GraphAgent: it asks the configured Provider for a
// Cypher statement, rejects write clauses, executes against Store, and
// serializes rows.
type Agent struct {
	store    Store
	provider plantagent.Provider
	schema   schemaCache
}

// NewAgent builds an Agent against store (the read-only Cypher execution
// boundary) and provider (the LLM used to generate Cypher).
func NewAgent(store Store, provider plantagent.Provider) *Agent {
	return &Agent{store: store, provider: provider}
}

func (a *Agent) Name() string { return "graph_agent" }

func (a *Agent) Query(ctx context.Context, question string, scope *plantagent.ScopeHint) (plantagent.GraphResult, error) {
	req := plantagent.ChatRequest{
		Messages: []plantagent.ChatMessage{
			plantagent.SystemMessage(systemPromptPreamble + a.schema.get()),
			plantagent.UserMessage(buildPrompt(question, scope)),
		},
	}

	resp, err := a.provider.Chat(ctx, req)
	if err != nil {
		return plantagent.GraphResult{Error: "graph query generation failed: " + err.Error()}, nil
	}

	cypher := stripCodeFence(resp.Content)
	if cypher == "" {
		return plantagent.GraphResult{Error: "LLM returned an empty Cypher reply"}, nil
	}

	if clause := rejectWriteClause(cypher); clause != "" {
		// Rejection produces an error result (§4.3 step 3), not a Go error:
		// the coordinator's node-error path discards the GraphResult it was
		// given, and the rejected Cypher text is worth keeping for the trace.
		return plantagent.GraphResult{Cypher: cypher, Error: "write clause rejected: " + clause}, nil
	}

	rows, err := a.store.Run(ctx, cypher, nil)
	if err != nil {
		return plantagent.GraphResult{Cypher: cypher, Error: "query execution failed: " + err.Error()}, nil
	}

	rowCount := len(rows)
	if len(rows) > hardRowCap {
		rows = rows[:hardRowCap]
	}

	out := make([]plantagent.GraphRow, len(rows))
	for i, row := range rows {
		out[i] = plantagent.GraphRow(row)
	}

	return plantagent.GraphResult{
		Cypher:   cypher,
		Rows:     out,
		RowCount: rowCount,
	}, nil
}

var _ plantagent.GraphAgent = (*Agent)(nil)

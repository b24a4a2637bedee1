package graph

import (
	"fmt"
	"regexp"
	"strings"

	plantagent "github.com/plantagent/core"
)

// writeClauses are the Cypher keywords that indicate a mutation. A reply
// containing any of these, as a whole word, is rejected before execution
// (§4.3 step 3).
var writeClauses = []string{"CREATE", "MERGE", "DELETE", "SET", "DROP", "REMOVE"}

// writeClausePattern additionally catches CALL ... YIELD invoking a write
// procedure, e.g. "CALL apoc.create.node(...) YIELD node".
var writeClausePattern = regexp.MustCompile(`(?i)\bCALL\b[\s\S]*\bYIELD\b`)

// callProcedurePattern extracts the dotted procedure name out of a
// "CALL proc.name(...) YIELD ..." clause, so a known read-only procedure can
// be told apart from a write procedure (§4.3: reject "CALL...YIELD with
// write procedures", not every CALL...YIELD).
var callProcedurePattern = regexp.MustCompile(`(?i)\bCALL\s+([a-zA-Z0-9_.]+)\s*\([^)]*\)[\s\S]*\bYIELD\b`)

// readOnlyCallProcedures are Neo4j built-in introspection procedures that
// never mutate the graph, even when invoked through CALL...YIELD. Anything
// not on this list (apoc.create.*, apoc.merge.*, apoc.periodic.*, and
// unrecognized procedures alike) is rejected conservatively.
var readOnlyCallProcedures = map[string]bool{
	"db.labels":               true,
	"db.relationshiptypes":    true,
	"db.propertykeys":         true,
	"db.schema.visualization": true,
	"db.indexes":              true,
	"db.constraints":          true,
	"dbms.components":         true,
}

// stripCodeFence removes leading/trailing ``` or ```cypher fences and
// surrounding whitespace from an LLM reply.
func stripCodeFence(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```cypher")
		s = strings.TrimPrefix(s, "```Cypher")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// rejectWriteClause reports "CALL ... YIELD" for a procedure call that is not
// on the read-only allowlist, otherwise the first write keyword found in
// cypher, or "" if none is present.
func rejectWriteClause(cypher string) string {
	if writeClausePattern.MatchString(cypher) {
		m := callProcedurePattern.FindStringSubmatch(cypher)
		if m == nil || !readOnlyCallProcedures[strings.ToLower(m[1])] {
			return "CALL ... YIELD"
		}
	}
	upper := strings.ToUpper(cypher)
	for _, clause := range writeClauses {
		if containsWord(upper, clause) {
			return clause
		}
	}
	return ""
}

func containsWord(haystack, word string) bool {
	pattern := `\b` + regexp.QuoteMeta(word) + `\b`
	matched, _ := regexp.MatchString(pattern, haystack)
	return matched
}

// scopeConstraint renders a ScopeHint as a textual hop-count constraint for
// the generation prompt. Per the Open Question decision in SPEC_FULL.md §6,
// scopeDepth is passed through as prose, never translated into a fixed
// traversal pattern — the model decides how many HAS_* hops to traverse.
func scopeConstraint(scope *plantagent.ScopeHint) string {
	if scope == nil || scope.NodeName == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Restrict results to the subtree rooted at %s %q.", scope.NodeType, scope.NodeName)
	if scope.ScopeDepth > 0 {
		fmt.Fprintf(&b, " If %s is an AssetArea, include its equipment and sensors transitively, up to %d hop(s) away.", scope.NodeType, scope.ScopeDepth)
	}
	if scope.Breadcrumb != "" {
		fmt.Fprintf(&b, " (path: %s)", scope.Breadcrumb)
	}
	return b.String()
}

// systemPromptPreamble is the fixed instruction portion of the Cypher
// generation prompt; the schema portion is appended at call time from the
// Agent's schemaCache (§4.3 step 1).
const systemPromptPreamble = `You are a Cypher query generator for an industrial plant graph database. Given the schema below and a question, emit exactly one read-only Cypher statement that answers it. Always include a LIMIT clause of 50 or fewer. Never use CREATE, MERGE, DELETE, SET, DROP, REMOVE, or any write procedure. Respond with ONLY the Cypher statement, no explanation, no markdown code fences.

Schema:
`

func buildPrompt(question string, scope *plantagent.ScopeHint) string {
	constraint := scopeConstraint(scope)
	if constraint == "" {
		return question
	}
	return question + "\n\n" + constraint
}

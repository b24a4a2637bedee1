package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for workflow node spans and metrics.
var (
	AttrNodeName   = attribute.Key("node.name")
	AttrNodeStatus = attribute.Key("node.status")

	AttrToolName         = attribute.Key("tool.name")
	AttrToolStatus       = attribute.Key("tool.status")
	AttrToolResultLength = attribute.Key("tool.result_length")

	AttrAgentName   = attribute.Key("agent.name")
	AttrAgentStatus = attribute.Key("agent.status")
)

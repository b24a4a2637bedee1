package graph

import "sync"

// schemaContext is the static plant-graph schema injected verbatim into the
// Cypher-generation prompt (§4.3 step 1). The model is small and fixed —
// four labels, a handful of relationships and representative properties —
// so it is hand-maintained rather than discovered at call time (spec.md
// Non-goals: "no schema discovery beyond what the graph agent performs at
// call time").
const schemaContext = `Node labels:
  Plant(name, site)
  AssetArea(name, description)
  Equipment(name, type, manufacturer)
  Sensor(name, tag, unit)

Relationship types:
  (:Plant)-[:HAS_AREA]->(:AssetArea)
  (:AssetArea)-[:HAS_EQUIPMENT]->(:Equipment)
  (:Equipment)-[:HAS_SENSOR]->(:Sensor)
  (:AssetArea)-[:HAS_SENSOR]->(:Sensor)

Representative properties: Plant.name, AssetArea.name, Equipment.name,
Equipment.type, Sensor.name, Sensor.tag, Sensor.unit.`

// schemaCache hands out the schema context string, memoizing it so a
// process answering many requests doesn't reformat it per call. Supplemental
// to spec.md: a process-lifetime cache avoids redundant work across
// requests the way the teacher avoids rebuilding prompt context on every
// message.
type schemaCache struct {
	once sync.Once
	text string
}

func (c *schemaCache) get() string {
	c.once.Do(func() {
		c.text = schemaContext
	})
	return c.text
}

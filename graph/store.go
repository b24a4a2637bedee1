package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Store is a read-only Cypher execution boundary: connection string, user,
// password, and database already resolved, a single Run entry point
// accepting Cypher text and a parameter map (spec.md §6 "Outbound — graph
// store").
type Store interface {
	// Run executes cypher read-only and returns its rows as plain maps,
	// scan-capped per row count (the agent truncates further).
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// scanCeiling bounds how many rows the store will pull off the result
// cursor before giving up counting precisely (§4.3 step 4, "up to a scan
// ceiling, e.g. 1,000 rows").
const scanCeiling = 1000

// Neo4jStore is a Store backed by the official Bolt driver, opening one
// read-only session per Run call.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore connects to uri with basic auth and returns a Store scoped
// to database. It verifies connectivity eagerly so configuration mistakes
// surface at startup, not on the first query.
func NewNeo4jStore(ctx context.Context, uri, user, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("graph: connect: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

// Close releases the underlying driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		var out []map[string]any
		for result.Next(ctx) && len(out) < scanCeiling {
			out = append(out, serializeRecord(result.Record()))
		}
		return out, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: execute: %w", err)
	}
	return rows.([]map[string]any), nil
}

// serializeRecord flattens a driver record's keyed values into a plain map,
// converting graph-native node/relationship/temporal types into scalar
// fields (§4.3 step 5).
func serializeRecord(record *neo4j.Record) map[string]any {
	out := make(map[string]any, len(record.Keys))
	for i, key := range record.Keys {
		out[key] = serializeValue(record.Values[i])
	}
	return out
}

func serializeValue(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		props := make(map[string]any, len(val.Props)+1)
		for k, pv := range val.Props {
			props[k] = serializeValue(pv)
		}
		props["_labels"] = val.Labels
		return props
	case neo4j.Relationship:
		props := make(map[string]any, len(val.Props)+1)
		for k, pv := range val.Props {
			props[k] = serializeValue(pv)
		}
		props["_type"] = val.Type
		return props
	case neo4j.Date:
		return val.Time().Format("2006-01-02")
	case neo4j.LocalDateTime:
		return val.Time().Format(time.RFC3339)
	case neo4j.LocalTime:
		return val.Time().Format("15:04:05")
	case time.Time:
		return val.Format(time.RFC3339)
	case []any:
		serialized := make([]any, len(val))
		for i, item := range val {
			serialized[i] = serializeValue(item)
		}
		return serialized
	case map[string]any:
		serialized := make(map[string]any, len(val))
		for k, item := range val {
			serialized[k] = serializeValue(item)
		}
		return serialized
	default:
		return val
	}
}

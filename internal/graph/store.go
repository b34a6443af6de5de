package graph

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
)

// Store is the storage-engine boundary: structural introspection, declarative
// query execution, and the upsert writes used by bill ingestion.
type Store interface {
	Introspect(ctx context.Context) (*graphmodel.SchemaDescriptor, error)
	Run(ctx context.Context, query string, params map[string]any) ([]graphmodel.Row, error)
	StoreBill(ctx context.Context, user, billID string, purchases []grocery.Purchase) (bool, error)
	TotalSpent(ctx context.Context, user, category string) (float64, error)
	Close(ctx context.Context) error
}

// Neo4jStore implements Store against a Neo4j instance. A session is opened
// and released per call; no connection is held across questions.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore connects to Neo4j and verifies the connection is usable.
func NewNeo4jStore(ctx context.Context, uri, username, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity check failed: %w", err)
	}
	return &Neo4jStore{driver: driver}, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Introspect assembles the current schema vocabulary from three read-only
// structural queries: entity kinds, relationship kinds, and the attribute
// names ever set on a node of each kind.
func (s *Neo4jStore) Introspect(ctx context.Context) (*graphmodel.SchemaDescriptor, error) {
	labels, err := s.collectStrings(ctx, "CALL db.labels() YIELD label RETURN label", "label")
	if err != nil {
		return nil, fmt.Errorf("failed to list entity kinds: %w", err)
	}

	relationships, err := s.collectStrings(ctx,
		"CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", "relationshipType")
	if err != nil {
		return nil, fmt.Errorf("failed to list relationship kinds: %w", err)
	}

	attributes := make(map[string][]string, len(labels))
	for _, label := range labels {
		query := fmt.Sprintf("MATCH (n:`%s`) UNWIND keys(n) AS key RETURN DISTINCT key", sanitizeLabel(label))
		keys, err := s.collectStrings(ctx, query, "key")
		if err != nil {
			return nil, fmt.Errorf("failed to list attributes for kind %s: %w", label, err)
		}
		attributes[label] = keys
	}

	return &graphmodel.SchemaDescriptor{
		EntityKinds:       labels,
		RelationshipKinds: relationships,
		AttributesByKind:  attributes,
	}, nil
}

// Run executes an arbitrary declarative query and returns all result rows in
// order. Zero rows is a valid outcome, not an error.
func (s *Neo4jStore) Run(ctx context.Context, query string, params map[string]any) ([]graphmodel.Row, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	var rows []graphmodel.Row
	for result.Next(ctx) {
		record := result.Record()
		rows = append(rows, graphmodel.Row{
			Keys:   append([]string(nil), record.Keys...),
			Values: record.AsMap(),
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// StoreBill merges a parsed receipt into the graph under the given bill id.
// It returns false without writing when the bill id was already processed.
func (s *Neo4jStore) StoreBill(ctx context.Context, user, billID string, purchases []grocery.Purchase) (bool, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	existing, err := session.Run(ctx, "MATCH (b:Bill {id: $bill_id}) RETURN b", map[string]any{"bill_id": billID})
	if err != nil {
		return false, fmt.Errorf("failed to check bill %s: %w", billID, err)
	}
	if existing.Next(ctx) {
		log.Printf("[graph] bill %s already processed, skipping duplicate entry", billID)
		return false, nil
	}
	if err := existing.Err(); err != nil {
		return false, err
	}

	if _, err := session.Run(ctx, "MERGE (b:Bill {id: $bill_id})", map[string]any{"bill_id": billID}); err != nil {
		return false, fmt.Errorf("failed to create bill %s: %w", billID, err)
	}

	for _, purchase := range purchases {
		_, err := session.Run(ctx, `
			MATCH (b:Bill {id: $bill_id})
			MERGE (u:User {name: $user})
			MERGE (i:Item {name: $item})
			MERGE (c:Category {name: $category})
			MERGE (i)-[:BELONGS_TO]->(c)
			MERGE (u)-[:BOUGHT]->(i)
			MERGE (b)-[:CONTAINS]->(i)
			SET i.price = $price, i.quantity = $quantity
		`, map[string]any{
			"bill_id":  billID,
			"user":     user,
			"item":     purchase.Item,
			"category": purchase.Category,
			"price":    purchase.Price,
			"quantity": purchase.Quantity,
		})
		if err != nil {
			return false, fmt.Errorf("failed to store item %q: %w", purchase.Item, err)
		}
	}
	return true, nil
}

// TotalSpent sums spending on a category for one user, matching the category
// name case-insensitively.
func (s *Neo4jStore) TotalSpent(ctx context.Context, user, category string) (float64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (u:User {name: $user})-[:BOUGHT]->(i:Item)-[:BELONGS_TO]->(c:Category)
		WHERE toLower(c.name) = toLower($category)
		RETURN SUM(toFloat(i.price)) AS total_spent
	`, map[string]any{"user": user, "category": category})
	if err != nil {
		return 0, err
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	value, _ := record.Get("total_spent")
	return asFloat(value), nil
}

func (s *Neo4jStore) collectStrings(ctx context.Context, query, column string) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var values []string
	for result.Next(ctx) {
		if value, ok := result.Record().Get(column); ok {
			if str, ok := value.(string); ok {
				values = append(values, str)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// sanitizeLabel guards the one spot where a label is interpolated into query
// text. Labels come from db.labels() so this only defends against backtick
// injection through previously stored data.
func sanitizeLabel(label string) string {
	return strings.ReplaceAll(label, "`", "")
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

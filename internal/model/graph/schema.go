package graph

import "strings"

// SchemaDescriptor is the introspected vocabulary of the knowledge graph:
// the entity kinds, relationship kinds, and per-kind attribute names that
// currently exist in the store. It is fetched fresh per question; queries
// must reference only what it contains.
type SchemaDescriptor struct {
	EntityKinds       []string            `json:"entityKinds"`
	RelationshipKinds []string            `json:"relationshipKinds"`
	AttributesByKind  map[string][]string `json:"attributesByKind"`
}

// HasAttribute reports whether the schema has seen the attribute on the
// given entity kind.
func (s *SchemaDescriptor) HasAttribute(kind, attribute string) bool {
	for _, attr := range s.AttributesByKind[kind] {
		if attr == attribute {
			return true
		}
	}
	return false
}

// HasRelationship reports whether the relationship kind exists in the store.
// Matching is case-insensitive since generated queries sometimes vary casing.
func (s *SchemaDescriptor) HasRelationship(kind string) bool {
	for _, rel := range s.RelationshipKinds {
		if strings.EqualFold(rel, kind) {
			return true
		}
	}
	return false
}

// Row is a single query result row: output-column values keyed by the alias
// used in the query, with Keys preserving the column order.
type Row struct {
	Keys   []string
	Values map[string]any
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
)

func itemSchema() *graphmodel.SchemaDescriptor {
	return &graphmodel.SchemaDescriptor{
		EntityKinds:       []string{"Item", "Category", "User"},
		RelationshipKinds: []string{"BOUGHT", "BELONGS_TO"},
		AttributesByKind: map[string][]string{
			"Item":     {"name", "price"},
			"Category": {"name"},
			"User":     {"name"},
		},
	}
}

func TestValidateAcceptsKnownAttributes(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (i:Item) RETURN i.name, i.price"
	assert.True(t, v.Validate(query, itemSchema()))
}

func TestValidateRejectsUnknownAttribute(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (i:Item) RETURN i.nonexistent_field"
	assert.False(t, v.Validate(query, itemSchema()))
}

func TestValidateResolvesAliasesAcrossPattern(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (u:User {name: 'sam'})-[:BOUGHT]->(i:Item)-[:BELONGS_TO]->(c:Category) " +
		"WHERE toLower(c.name) = 'dairy' RETURN SUM(toFloat(i.price)) AS total_spent"
	assert.True(t, v.Validate(query, itemSchema()))
}

func TestValidateRejectsTypoOnSecondAlias(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (i:Item)-[:BELONGS_TO]->(c:Category) RETURN c.title, i.price"
	assert.False(t, v.Validate(query, itemSchema()))
}

func TestValidateMissingRelationshipIsSoft(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (u:User)-[:PURCHASED]->(i:Item) RETURN i.name"
	assert.True(t, v.Validate(query, itemSchema()))
}

func TestValidateIgnoresNumericLiterals(t *testing.T) {
	v := TextValidator{}
	query := "MATCH (i:Item) WHERE i.price > 5.99 RETURN i.name"
	assert.True(t, v.Validate(query, itemSchema()))
}

func TestValidateIgnoresUndeclaredQualifiers(t *testing.T) {
	v := TextValidator{}
	// "row.total" is not a declared node alias, so it is not checked.
	query := "MATCH (i:Item) WITH i.price AS p RETURN row.total"
	assert.True(t, v.Validate(query, itemSchema()))
}

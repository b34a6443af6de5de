package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
)

// fakeGenerator scripts generation output for tests and records prompts.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, promptText string) (string, error) {
	f.prompts = append(f.prompts, promptText)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testSchema() *graphmodel.SchemaDescriptor {
	return &graphmodel.SchemaDescriptor{
		EntityKinds:       []string{"User", "Item", "Category"},
		RelationshipKinds: []string{"BOUGHT", "BELONGS_TO"},
		AttributesByKind: map[string][]string{
			"User":     {"name"},
			"Item":     {"name", "price", "quantity"},
			"Category": {"name"},
		},
	}
}

func TestSynthesizeStripsFenceAndLogsQuery(t *testing.T) {
	gen := &fakeGenerator{response: "```cypher\nMATCH (i:Item) RETURN i.name\n```"}
	s := NewQuerySynthesizer(gen)

	query, err := s.Synthesize(context.Background(), "what items did I buy?", testSchema(), "sam")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (i:Item) RETURN i.name", query)
}

func TestSynthesizePromptCarriesSchemaVocabulary(t *testing.T) {
	gen := &fakeGenerator{response: "MATCH (i:Item) RETURN i.name"}
	s := NewQuerySynthesizer(gen)

	_, err := s.Synthesize(context.Background(), "what items did I buy?", testSchema(), "sam")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Category")
	assert.Contains(t, prompt, "BELONGS_TO")
	assert.Contains(t, prompt, "price")
	assert.Contains(t, prompt, `"sam"`)
}

func TestSynthesizeRejectsEmptyOutput(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	s := NewQuerySynthesizer(gen)

	_, err := s.Synthesize(context.Background(), "anything", testSchema(), "sam")
	assert.Error(t, err)
}

func TestNormalizeQueryStripsQuotes(t *testing.T) {
	got := NormalizeQuery("`MATCH (i:Item) RETURN i.name`")
	assert.Equal(t, "MATCH (i:Item) RETURN i.name", got)
}

func TestNormalizeQueryRewritesMapNameFilter(t *testing.T) {
	got := NormalizeQuery("MATCH (c:Category {name: 'Fruits'}) RETURN c.name")
	assert.Equal(t, "MATCH (c:Category {name: toLower('Fruits')}) RETURN c.name", got)
}

func TestNormalizeQueryRewritesBareEquality(t *testing.T) {
	got := NormalizeQuery("MATCH (c:Category) WHERE c.name = 'Fruits' RETURN c")
	assert.Equal(t, "MATCH (c:Category) WHERE toLower(c.name) = toLower('Fruits') RETURN c", got)
}

func TestNormalizeQueryLeavesLoweredFilterAlone(t *testing.T) {
	query := "MATCH (c:Category) WHERE toLower(c.name) = toLower('Fruits') RETURN c"
	assert.Equal(t, query, NormalizeQuery(query))
}

func TestNormalizeQueryCollapsesDuplicateAliases(t *testing.T) {
	got := NormalizeQuery("RETURN SUM(i.price) AS total_spent AS total_spent")
	assert.Equal(t, "RETURN SUM(i.price) AS total_spent", got)
}

func TestNormalizeQueryPassesThroughUnexpectedShapes(t *testing.T) {
	garbage := "sorry, I cannot produce a query for that"
	assert.Equal(t, garbage, NormalizeQuery(garbage))
}

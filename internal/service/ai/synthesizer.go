package ai

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
)

// QuerySynthesizer drafts a Cypher query for a natural-language question,
// restricted to the vocabulary the schema descriptor actually contains.
type QuerySynthesizer struct {
	generator Generator
}

// NewQuerySynthesizer wires the synthesizer to a generation boundary.
func NewQuerySynthesizer(generator Generator) *QuerySynthesizer {
	return &QuerySynthesizer{generator: generator}
}

// Synthesize produces one normalized query string for the question. The raw
// generator output is treated as untrusted text and passed through a
// best-effort textual cleanup before being returned.
func (s *QuerySynthesizer) Synthesize(ctx context.Context, question string, schema *graphmodel.SchemaDescriptor, user string) (string, error) {
	raw, err := s.generator.Generate(ctx, buildSynthesisPrompt(question, schema, user))
	if err != nil {
		return "", fmt.Errorf("query synthesis failed: %w", err)
	}

	query := NormalizeQuery(raw)
	if query == "" {
		return "", fmt.Errorf("query synthesis produced empty output")
	}
	log.Printf("[synthesizer] generated query: %s", query)
	return query, nil
}

func buildSynthesisPrompt(question string, schema *graphmodel.SchemaDescriptor, user string) string {
	var b strings.Builder
	b.WriteString("You have access to a grocery spending knowledge graph (Neo4j).\n")
	fmt.Fprintf(&b, "The user asked: %q\n\n", question)

	b.WriteString("Current database schema:\n")
	b.WriteString("- Entity kinds: ")
	b.WriteString(strings.Join(schema.EntityKinds, ", "))
	b.WriteString("\n- Relationship kinds: ")
	b.WriteString(strings.Join(schema.RelationshipKinds, ", "))
	b.WriteString("\n")
	for _, kind := range schema.EntityKinds {
		if attrs := schema.AttributesByKind[kind]; len(attrs) > 0 {
			fmt.Fprintf(&b, "- %s nodes contain: %s\n", kind, strings.Join(attrs, ", "))
		}
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Use only the entity kinds, relationship kinds, and attributes listed above.\n")
	b.WriteString("- Compare category and item names case-insensitively with toLower().\n")
	b.WriteString("- Alias every aggregate output column with a stable snake_case name, e.g. SUM of prices AS total_spent.\n")
	b.WriteString("- When the question names multiple categories, filter with toLower(c.name) IN [...] rather than repeated OR clauses.\n")
	fmt.Fprintf(&b, "- All data belongs to the user named %q.\n", user)

	b.WriteString("\nExample inputs and expected Cypher queries:\n")
	fmt.Fprintf(&b, "- \"On what did I spend the most?\" -> MATCH (u:User {name: '%s'})-[:BOUGHT]->(i:Item)-[:BELONGS_TO]->(c:Category) RETURN c.name, SUM(i.price) AS total_spent ORDER BY total_spent DESC LIMIT 1\n", user)
	fmt.Fprintf(&b, "- \"How much did I spend on Fruits?\" -> MATCH (u:User {name: '%s'})-[:BOUGHT]->(i:Item)-[:BELONGS_TO]->(c:Category) WHERE toLower(c.name) = toLower('Fruits') RETURN SUM(i.price) AS total_spent\n", user)
	fmt.Fprintf(&b, "- \"What is my most expensive item?\" -> MATCH (u:User {name: '%s'})-[:BOUGHT]->(i:Item) RETURN i.name, i.price ORDER BY i.price DESC LIMIT 1\n", user)
	fmt.Fprintf(&b, "- \"What item do I buy the most?\" -> MATCH (u:User {name: '%s'})-[:BOUGHT]->(i:Item) RETURN i.name, COUNT(i) AS frequency ORDER BY frequency DESC LIMIT 1\n", user)

	b.WriteString("\nOutput only the Cypher query.")
	return b.String()
}

var (
	fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	// {name: 'Fruits'} map-literal filters, matched case-sensitively so ones
	// already passed through toLower are left alone.
	mapNamePattern = regexp.MustCompile(`\{\s*name:\s*'([^']+)'\s*\}`)
	// c.name = 'Fruits' bare equality on a name-like attribute.
	bareEqualityPattern = regexp.MustCompile(`([A-Za-z_]\w*)\.(name)\s*=\s*'([^']+)'`)
	// AS alias AS alias — duplicate aliasing clauses some generators emit.
	duplicateAliasPattern = regexp.MustCompile(`(?i)\bAS\s+(\w+)(?:\s+AS\s+\w+)+`)
)

// NormalizeQuery is the best-effort cleanup pass over raw generator output:
// strip code-fence and quote decoration, rewrite bare name-equality filters
// into case-insensitive form, and collapse duplicate alias clauses. Input
// that matches none of the expected shapes passes through unchanged.
func NormalizeQuery(raw string) string {
	query := strings.TrimSpace(raw)

	if m := fencePattern.FindStringSubmatch(query); m != nil {
		query = strings.TrimSpace(m[1])
	}
	query = strings.Trim(query, "`\"'")
	query = strings.TrimSpace(query)

	query = mapNamePattern.ReplaceAllString(query, "{name: toLower('$1')}")
	query = rewriteBareEquality(query)
	query = duplicateAliasPattern.ReplaceAllString(query, "AS $1")

	return query
}

// rewriteBareEquality turns alias.name = 'X' into
// toLower(alias.name) = toLower('X') unless the reference is already wrapped.
func rewriteBareEquality(query string) string {
	matches := bareEqualityPattern.FindAllStringSubmatchIndex(query, -1)
	if len(matches) == 0 {
		return query
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if alreadyLowered(query, start) {
			continue
		}
		alias := query[m[2]:m[3]]
		attr := query[m[4]:m[5]]
		value := query[m[6]:m[7]]

		b.WriteString(query[last:start])
		fmt.Fprintf(&b, "toLower(%s.%s) = toLower('%s')", alias, attr, value)
		last = end
	}
	b.WriteString(query[last:])
	return b.String()
}

func alreadyLowered(query string, matchStart int) bool {
	prefix := query[:matchStart]
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(prefix)), "tolower(")
}

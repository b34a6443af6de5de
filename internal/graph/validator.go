package graph

import (
	"log"
	"regexp"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
)

// Validator statically checks a synthesized query against the introspected
// schema before it is executed.
type Validator interface {
	Validate(query string, schema *graphmodel.SchemaDescriptor) bool
}

// TextValidator is a conservative text-level check over the query string, not
// a parse. It is strict on attribute references, because an attribute typo
// always surfaces as an opaque execution error, and permissive on
// relationships, since generated phrasing may use relationship words that do
// not map 1:1 to stored labels.
type TextValidator struct{}

var (
	// (i:Item or (i:`Item` — node alias declarations.
	aliasPattern = regexp.MustCompile("\\(\\s*([A-Za-z_]\\w*)\\s*:\\s*`?([A-Za-z_]\\w*)`?")
	// i.price — kind-qualified attribute references. Both sides must start
	// with a letter so numeric literals like 5.99 never match.
	attributePattern = regexp.MustCompile(`\b([A-Za-z_]\w*)\.([A-Za-z_]\w*)`)
	// [:BOUGHT or [r:BOUGHT — relationship keywords.
	relationshipPattern = regexp.MustCompile("\\[\\s*\\w*\\s*:\\s*`?([A-Za-z_]\\w*)")
)

// Validate resolves every alias-qualified attribute reference in the query
// back to its declared entity kind and rejects the first attribute the schema
// has never seen. Missing relationships are logged as warnings only.
func (TextValidator) Validate(query string, schema *graphmodel.SchemaDescriptor) bool {
	aliases := make(map[string]string)
	for _, match := range aliasPattern.FindAllStringSubmatch(query, -1) {
		aliases[match[1]] = match[2]
	}

	for _, match := range relationshipPattern.FindAllStringSubmatch(query, -1) {
		if !schema.HasRelationship(match[1]) {
			log.Printf("[validator] warning: relationship %q not present in schema", match[1])
		}
	}

	for _, match := range attributePattern.FindAllStringSubmatch(query, -1) {
		kind, declared := aliases[match[1]]
		if !declared {
			// Not a node alias — could be a map access or function result.
			continue
		}
		if !schema.HasAttribute(kind, match[2]) {
			log.Printf("[validator] unknown attribute %s.%s on kind %s", match[1], match[2], kind)
			return false
		}
	}
	return true
}

package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Intent is the classified handling strategy for a question.
type Intent string

const (
	// IntentDatabaseQuery answers by executing the synthesized query.
	IntentDatabaseQuery Intent = "database_query"
	// IntentSessionData answers purely from conversation turns or
	// inline-supplied purchase history.
	IntentSessionData Intent = "session_data"
	// IntentRAG combines query results with conversation history.
	IntentRAG Intent = "rag"
	// IntentAIInference generates from general knowledge with no grounding.
	IntentAIInference Intent = "ai_inference"
	// IntentUnknown is never requested from the model; it marks output that
	// matched no known label and routes to the fixed fallback answer.
	IntentUnknown Intent = "unknown"
)

var knownIntents = []Intent{IntentDatabaseQuery, IntentSessionData, IntentRAG, IntentAIInference}

// IntentClassifier categorizes a question into one of four handling
// strategies through the generation boundary.
type IntentClassifier struct {
	generator Generator
}

// NewIntentClassifier wires the classifier to a generation boundary.
func NewIntentClassifier(generator Generator) *IntentClassifier {
	return &IntentClassifier{generator: generator}
}

// Classify returns the intent for a question. Generation failures and
// unrecognized labels degrade to IntentUnknown rather than an error, so the
// caller always has a branch to take.
func (c *IntentClassifier) Classify(ctx context.Context, question string) Intent {
	raw, err := c.generator.Generate(ctx, buildClassifierPrompt(question))
	if err != nil {
		log.Printf("[classifier] generation failed: %v", err)
		return IntentUnknown
	}

	intent := ParseIntent(raw)
	if intent == IntentUnknown {
		log.Printf("[classifier] unrecognized label %q", raw)
	}
	return intent
}

func buildClassifierPrompt(question string) string {
	var b strings.Builder
	b.WriteString("Classify how the following question about grocery spending should be answered.\n")
	fmt.Fprintf(&b, "Question: %q\n\n", question)
	b.WriteString("Labels:\n")
	b.WriteString("- database_query: the answer requires executing a query against the spending knowledge graph.\n")
	b.WriteString("- session_data: the answer can be derived purely from the current conversation or purchase history already provided.\n")
	b.WriteString("- rag: the answer should combine the knowledge graph with the conversation history.\n")
	b.WriteString("- ai_inference: no structured data is needed; answer from general knowledge.\n\n")
	b.WriteString("Respond with exactly one of the four labels and nothing else.")
	return b.String()
}

// ParseIntent maps raw classifier output onto a known intent. The output is
// untrusted: it is trimmed, lowercased, and scanned token-wise before giving
// up with IntentUnknown.
func ParseIntent(raw string) Intent {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "`\"'."))
	for _, intent := range knownIntents {
		if normalized == string(intent) {
			return intent
		}
	}

	// Some generators wrap the label in prose; accept an exact token match.
	for _, token := range strings.Fields(normalized) {
		token = strings.Trim(token, "`\"'.,:")
		for _, intent := range knownIntents {
			if token == string(intent) {
				return intent
			}
		}
	}
	return IntentUnknown
}

package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntentExactLabels(t *testing.T) {
	cases := map[string]Intent{
		"database_query": IntentDatabaseQuery,
		"session_data":   IntentSessionData,
		"rag":            IntentRAG,
		"ai_inference":   IntentAIInference,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseIntent(raw), "label %q", raw)
	}
}

func TestParseIntentToleratesDecoration(t *testing.T) {
	assert.Equal(t, IntentDatabaseQuery, ParseIntent("  DATABASE_QUERY\n"))
	assert.Equal(t, IntentRAG, ParseIntent("`rag`"))
	assert.Equal(t, IntentSessionData, ParseIntent("\"session_data\"."))
	assert.Equal(t, IntentAIInference, ParseIntent("Label: ai_inference"))
}

func TestParseIntentUnknownOnGarbage(t *testing.T) {
	assert.Equal(t, IntentUnknown, ParseIntent("I would query the database"))
	assert.Equal(t, IntentUnknown, ParseIntent(""))
	// "rag" must match as a whole token, not as a substring.
	assert.Equal(t, IntentUnknown, ParseIntent("average"))
}

func TestClassifyDegradesToUnknownOnGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	c := NewIntentClassifier(gen)

	assert.Equal(t, IntentUnknown, c.Classify(context.Background(), "how much did I spend?"))
}

func TestClassifyPromptEnumeratesLabels(t *testing.T) {
	gen := &fakeGenerator{response: "database_query"}
	c := NewIntentClassifier(gen)

	got := c.Classify(context.Background(), "how much did I spend on Dairy?")
	assert.Equal(t, IntentDatabaseQuery, got)

	prompt := gen.prompts[0]
	for _, label := range []string{"database_query", "session_data", "rag", "ai_inference"} {
		assert.Contains(t, prompt, label)
	}
}

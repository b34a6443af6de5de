package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
	memorymodel "github.com/sanjanak/grocery-graph/backend/internal/model/memory"
)

func TestFromRowsZeroRowsReturnsNoDataVerbatim(t *testing.T) {
	gen := &fakeGenerator{response: "should never be used"}
	s := NewAnswerSynthesizer(gen)

	answer, err := s.FromRows(context.Background(), "how much did I spend on Dairy?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, NoDataMessage, answer)
	assert.Empty(t, gen.prompts, "zero rows must not trigger a generation call")
}

func TestFromRowsGroundsPromptInRowValues(t *testing.T) {
	gen := &fakeGenerator{response: "You spent $5.99 on dairy."}
	s := NewAnswerSynthesizer(gen)

	rows := []graphmodel.Row{{
		Keys:   []string{"total_spent"},
		Values: map[string]any{"total_spent": 5.99},
	}}
	answer, err := s.FromRows(context.Background(), "how much did I spend on Dairy?", rows, nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "5.99")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "total_spent: 5.99")
	assert.Contains(t, gen.prompts[0], "do not invent")
}

func TestFromRowsBlendsConversationForRAG(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	s := NewAnswerSynthesizer(gen)

	rows := []graphmodel.Row{{Keys: []string{"c"}, Values: map[string]any{"c": "dairy"}}}
	turns := []memorymodel.Turn{
		{Type: memorymodel.TypeHuman, Content: "what did I buy?"},
		{Type: memorymodel.TypeAI, Content: "Milk and bananas."},
	}
	_, err := s.FromRows(context.Background(), "and how much was that?", rows, turns)
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "Milk and bananas.")
}

func TestFromMemoryUsesInlineHistory(t *testing.T) {
	gen := &fakeGenerator{response: "Your priciest item was cheese."}
	s := NewAnswerSynthesizer(gen)

	history := []grocery.Purchase{{Item: "Cheese", Quantity: 1, Price: 7.49, Category: "Dairy"}}
	_, err := s.FromMemory(context.Background(), "what was my most expensive item?", nil, history)
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "Cheese")
	assert.Contains(t, gen.prompts[0], "7.49")
}

func TestDirectPassesQuestionOnly(t *testing.T) {
	gen := &fakeGenerator{response: "Buy seasonal produce to save money."}
	s := NewAnswerSynthesizer(gen)

	answer, err := s.Direct(context.Background(), "how do I save on groceries?")
	require.NoError(t, err)
	assert.Equal(t, "Buy seasonal produce to save money.", answer)
	assert.Contains(t, gen.prompts[0], "how do I save on groceries?")
}

func TestEmptyGenerationFallsBack(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	s := NewAnswerSynthesizer(gen)

	answer, err := s.Direct(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, answer)
}

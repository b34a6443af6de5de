package ai

import (
	"context"
	"fmt"
	"strings"

	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
	memorymodel "github.com/sanjanak/grocery-graph/backend/internal/model/memory"
)

// NoDataMessage is returned verbatim when a query executes to zero rows.
// Inventing an answer in that case is not permitted.
const NoDataMessage = "No relevant data found in your grocery history."

// FallbackMessage is the response when no handling branch matches.
const FallbackMessage = "I'm not sure how to answer that."

// AnswerSynthesizer converts query result rows, memory turns, or nothing into
// a natural-language answer.
type AnswerSynthesizer struct {
	generator Generator
}

// NewAnswerSynthesizer wires the synthesizer to a generation boundary.
func NewAnswerSynthesizer(generator Generator) *AnswerSynthesizer {
	return &AnswerSynthesizer{generator: generator}
}

// FromRows grounds an answer in the supplied result rows, optionally blending
// in conversation turns. Zero rows short-circuits to NoDataMessage without a
// generation call.
func (s *AnswerSynthesizer) FromRows(ctx context.Context, question string, rows []graphmodel.Row, turns []memorymodel.Turn) (string, error) {
	if len(rows) == 0 {
		return NoDataMessage, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The user asked: %q\n\n", question)
	b.WriteString("Query results from the user's grocery spending graph:\n")
	b.WriteString(formatRows(rows))
	if len(turns) > 0 {
		b.WriteString("\nRecent conversation:\n")
		b.WriteString(formatTurns(turns))
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer the question in one or two friendly sentences. ")
	b.WriteString("Use only the figures present in the query results; do not invent amounts, items, or categories.")

	return s.generate(ctx, b.String())
}

// FromMemory answers from conversation turns and inline purchase history
// alone, with no store access.
func (s *AnswerSynthesizer) FromMemory(ctx context.Context, question string, turns []memorymodel.Turn, history []grocery.Purchase) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "The user asked: %q\n\n", question)
	b.WriteString("Conversation so far:\n")
	b.WriteString(formatTurns(turns))
	b.WriteString("\n")
	if len(history) > 0 {
		b.WriteString("\nPurchases supplied with the request:\n")
		b.WriteString(formatPurchases(history))
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer the question in one or two friendly sentences using only the information above. ")
	b.WriteString("If the information is not there, say so plainly.")

	return s.generate(ctx, b.String())
}

// Direct generates an answer from general knowledge. Callers must treat the
// result as unverified.
func (s *AnswerSynthesizer) Direct(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf("Answer this question about groceries or budgeting in one or two friendly sentences: %q", question)
	return s.generate(ctx, prompt)
}

func (s *AnswerSynthesizer) generate(ctx context.Context, prompt string) (string, error) {
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("answer synthesis failed: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return FallbackMessage, nil
	}
	return strings.TrimSpace(answer), nil
}

func formatRows(rows []graphmodel.Row) string {
	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. ", i+1)
		for j, key := range row.Keys {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", key, row.Values[key])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatTurns(turns []memorymodel.Turn) string {
	if len(turns) == 0 {
		return "(no prior conversation)\n"
	}
	var b strings.Builder
	for _, turn := range turns {
		role := "User"
		if turn.Type == memorymodel.TypeAI {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
	}
	return b.String()
}

func formatPurchases(purchases []grocery.Purchase) string {
	var b strings.Builder
	for _, p := range purchases {
		fmt.Fprintf(&b, "- %s x%.2f at $%.2f (%s)\n", p.Item, p.Quantity, p.Price, p.Category)
	}
	return b.String()
}

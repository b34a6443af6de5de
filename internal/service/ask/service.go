package ask

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sanjanak/grocery-graph/backend/internal/graph"
	graphmodel "github.com/sanjanak/grocery-graph/backend/internal/model/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
	memorymodel "github.com/sanjanak/grocery-graph/backend/internal/model/memory"
	"github.com/sanjanak/grocery-graph/backend/internal/service/ai"
	memoryservice "github.com/sanjanak/grocery-graph/backend/internal/service/memory"
)

var (
	// ErrEmptyQuestion is returned before any pipeline stage runs.
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrQueryValidation means the synthesized query referenced vocabulary
	// the schema does not contain. The query is not retried.
	ErrQueryValidation = errors.New("generated query failed schema validation")
	// ErrQueryExecution wraps failures from running the query against the
	// store.
	ErrQueryExecution = errors.New("failed to execute query")
)

// Service orchestrates the question-answering pipeline: memory short-circuit,
// schema introspection, query synthesis and validation, intent classification,
// branch execution, and answer formatting. One response per question.
type Service struct {
	store       graph.Store
	memory      *memoryservice.Store
	synthesizer *ai.QuerySynthesizer
	classifier  *ai.IntentClassifier
	answers     *ai.AnswerSynthesizer
	validator   graph.Validator
	user        string
}

// NewService wires the pipeline. All external dependencies are injected so
// tests can substitute fakes.
func NewService(store graph.Store, memory *memoryservice.Store, generator ai.Generator, user string) *Service {
	return &Service{
		store:       store,
		memory:      memory,
		synthesizer: ai.NewQuerySynthesizer(generator),
		classifier:  ai.NewIntentClassifier(generator),
		answers:     ai.NewAnswerSynthesizer(generator),
		validator:   graph.TextValidator{},
		user:        user,
	}
}

// Answer handles one question to completion and returns exactly one response
// string. The question is appended to memory on entry and the answer on exit;
// a validation or execution failure leaves the question turn in place without
// an answer turn.
func (s *Service) Answer(ctx context.Context, question string, history []grocery.Purchase) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	// Reuse path: a verbatim repeat of an earlier question is answered from
	// memory with no generation calls. Both turns are still appended for
	// continuity.
	if prior, ok := s.recallAnswer(question); ok {
		log.Printf("[ask] reusing stored answer for repeated question")
		s.memory.AddMessage(question, true)
		s.memory.AddMessage(prior, false)
		return prior, nil
	}

	s.memory.AddMessage(question, true)

	// Introspection, synthesis, and validation always run so any intent
	// branch can use the query.
	schema, err := s.store.Introspect(ctx)
	if err != nil {
		return "", fmt.Errorf("schema introspection failed: %w", err)
	}

	query, err := s.synthesizer.Synthesize(ctx, question, schema, s.user)
	if err != nil {
		return "", err
	}

	if !s.validator.Validate(query, schema) {
		return "", fmt.Errorf("%w: %s", ErrQueryValidation, query)
	}

	intent := s.classifier.Classify(ctx, question)
	log.Printf("[ask] intent=%s question=%q", intent, question)

	answer, err := s.dispatch(ctx, intent, question, query, history)
	if err != nil {
		return "", err
	}

	s.memory.AddMessage(answer, false)
	return answer, nil
}

func (s *Service) dispatch(ctx context.Context, intent ai.Intent, question, query string, history []grocery.Purchase) (string, error) {
	switch intent {
	case ai.IntentDatabaseQuery:
		rows, err := s.runQuery(ctx, query)
		if err != nil {
			return "", err
		}
		return s.answers.FromRows(ctx, question, rows, nil)

	case ai.IntentRAG:
		rows, err := s.runQuery(ctx, query)
		if err != nil {
			return "", err
		}
		return s.answers.FromRows(ctx, question, rows, s.memory.Turns())

	case ai.IntentSessionData:
		return s.answers.FromMemory(ctx, question, s.memory.Turns(), history)

	case ai.IntentAIInference:
		return s.answers.Direct(ctx, question)

	default:
		return ai.FallbackMessage, nil
	}
}

func (s *Service) runQuery(ctx context.Context, query string) ([]graphmodel.Row, error) {
	rows, err := s.store.Run(ctx, query, nil)
	if err != nil {
		log.Printf("[ask] query execution failed: query=%q err=%v", query, err)
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	return rows, nil
}

// recallAnswer scans memory, newest first, for a human turn matching the
// question whose immediately following turn is an answer.
func (s *Service) recallAnswer(question string) (string, bool) {
	turns := s.memory.Turns()
	for i := len(turns) - 2; i >= 0; i-- {
		if turns[i].Type != memorymodel.TypeHuman {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(turns[i].Content), question) {
			continue
		}
		if turns[i+1].Type == memorymodel.TypeAI {
			return turns[i+1].Content, true
		}
	}
	return "", false
}

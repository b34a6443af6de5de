package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sanjanak/grocery-graph/backend/internal/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
)

var (
	// ErrNoExtractor means image ingestion was attempted without an OCR
	// collaborator configured.
	ErrNoExtractor = errors.New("ocr extractor not configured")
	// ErrNoPurchases means the parser could not find any line items.
	ErrNoPurchases = errors.New("no purchases found in receipt text")
)

// TextExtractor is the OCR boundary: receipt image bytes in, raw text out.
// Implementations are external collaborators; the service works without one
// as long as callers supply receipt text directly.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Service ingests receipts into the knowledge graph.
type Service struct {
	store     graph.Store
	parser    *Parser
	extractor TextExtractor
	user      string
}

// NewService builds the ingestion service. extractor may be nil.
func NewService(store graph.Store, parser *Parser, extractor TextExtractor, user string) *Service {
	return &Service{
		store:     store,
		parser:    parser,
		extractor: extractor,
		user:      user,
	}
}

// IngestImage runs OCR on receipt image bytes and ingests the extracted text.
func (s *Service) IngestImage(ctx context.Context, image []byte) (*grocery.Bill, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}
	text, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	return s.IngestText(ctx, text)
}

// IngestText parses receipt text into purchases and merges them into the
// graph under a fresh bill id.
func (s *Service) IngestText(ctx context.Context, text string) (*grocery.Bill, error) {
	purchases, err := s.parser.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, ErrNoPurchases
	}

	billID := uuid.NewString()[:8]
	stored, err := s.store.StoreBill(ctx, s.user, billID, purchases)
	if err != nil {
		return nil, fmt.Errorf("failed to store bill: %w", err)
	}
	if !stored {
		log.Printf("[ingest] bill %s was already present", billID)
	}

	return &grocery.Bill{
		ID:        billID,
		Purchases: purchases,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TotalSpent reports total spending on one category for the service's user.
func (s *Service) TotalSpent(ctx context.Context, category string) (float64, error) {
	return s.store.TotalSpent(ctx, s.user, category)
}

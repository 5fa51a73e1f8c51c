// Package corpora manages corpus lifecycle and document ingestion.
package corpora

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
)

// Store persists corpora and documents (ISP).
type Store interface {
	Create(ctx context.Context, name string) (corpus.Corpus, error)
	Get(ctx context.Context, name string) (corpus.Corpus, error)
	UpsertDocuments(ctx context.Context, corpusName string, docs []document.Document) error
	DocumentCount(ctx context.Context, corpusName string) (int, error)
}

// DocumentInput is one document to ingest. ID is optional and generated when
// empty.
type DocumentInput struct {
	ID      string
	Content string
}

// Service manages corpora.
type Service struct {
	store Store
}

// New creates a corpus service.
func New(store Store) *Service {
	return &Service{store: store}
}

// Create provisions a corpus with its search index.
func (s *Service) Create(ctx context.Context, name string) (corpus.Corpus, error) {
	c, err := s.store.Create(ctx, name)
	if err != nil {
		return corpus.Corpus{}, fmt.Errorf("create corpus: %w", err)
	}
	return c, nil
}

// Get returns a corpus with its document count.
func (s *Service) Get(ctx context.Context, name string) (corpus.Corpus, int, error) {
	c, err := s.store.Get(ctx, name)
	if err != nil {
		return corpus.Corpus{}, 0, err
	}
	count, err := s.store.DocumentCount(ctx, name)
	if err != nil {
		return corpus.Corpus{}, 0, err
	}
	return c, count, nil
}

// Ingest validates, computes statistics for, and stores a batch of documents.
// Validation is all-or-nothing: one bad document rejects the whole batch
// before anything is written. Returns the number of stored documents.
func (s *Service) Ingest(ctx context.Context, corpusName string, inputs []DocumentInput) (int, error) {
	if _, err := s.store.Get(ctx, corpusName); err != nil {
		return 0, fmt.Errorf("get corpus: %w", err)
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: no documents given", domain.ErrInvalidArgument)
	}

	docs := make([]document.Document, len(inputs))
	for i, in := range inputs {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		d, err := document.New(id, "", in.Content)
		if err != nil {
			return 0, fmt.Errorf("%w: document %d: %w", domain.ErrInvalidArgument, i, err)
		}
		docs[i] = d
	}

	if err := s.store.UpsertDocuments(ctx, corpusName, docs); err != nil {
		return 0, fmt.Errorf("store documents: %w", err)
	}
	return len(docs), nil
}

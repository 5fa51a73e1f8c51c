// Package search adapts the full-text backend for the operation engine.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/corpusd/internal/db"
	"github.com/kailas-cloud/corpusd/internal/domain"
	domsearch "github.com/kailas-cloud/corpusd/internal/domain/search"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexFields(ctx context.Context, name string) ([]string, error)
}

// Repo implements the search backend adapter.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search executes a compiled query against a corpus's index and returns
// hits in backend rank order. A backend query rejection maps to
// ErrInvalidQuery; any transport-level failure maps to ErrBackendUnavailable.
func (r *Repo) Search(ctx context.Context, corpusName, compiled string, size int) ([]domsearch.Hit, error) {
	q := &db.TextQuery{
		IndexName: indexName(corpusName),
		Query:     compiled,
		Size:      size,
	}

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrBadQuery) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrBackendUnavailable, corpusName, err)
	}

	prefix := docPrefix(corpusName)
	hits := make([]domsearch.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, domsearch.Hit{
			DocID: strings.TrimPrefix(e.Key, prefix),
			Score: e.Score,
		})
	}
	return hits, nil
}

// Exists reports whether a corpus's index exists on the backend.
func (r *Repo) Exists(ctx context.Context, corpusName string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, indexName(corpusName))
	if err != nil {
		return false, fmt.Errorf("%w: index exists %s: %w", domain.ErrBackendUnavailable, corpusName, err)
	}
	return ok, nil
}

// Fields returns a corpus index's field identifiers, used only as a
// diagnostic fallback when a query yields zero hits.
func (r *Repo) Fields(ctx context.Context, corpusName string) ([]string, error) {
	fields, err := r.store.IndexFields(ctx, indexName(corpusName))
	if err != nil {
		return nil, fmt.Errorf("%w: index fields %s: %w", domain.ErrBackendUnavailable, corpusName, err)
	}
	return fields, nil
}

func indexName(corpusName string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, corpusName)
}

func docPrefix(corpusName string) string {
	return fmt.Sprintf("%s%s:doc:", domain.KeyPrefix, corpusName)
}

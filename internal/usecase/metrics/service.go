// Package metrics aggregates document-set and query-execution statistics.
package metrics

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// Service computes set metrics from stored per-document statistics and query
// metrics from the executed expression tree.
type Service struct {
	sets  SetReader
	docs  DocumentReader
	store MetricsStore
}

// New creates a metrics service.
func New(sets SetReader, docs DocumentReader, store MetricsStore) *Service {
	return &Service{sets: sets, docs: docs, store: store}
}

// ComputeSetMetrics aggregates the statistics of a set's current members and
// overwrites the stored metrics row. Recomputing is idempotent: the row holds
// exactly one value per field, never a history.
func (s *Service) ComputeSetMetrics(ctx context.Context, corpusName, name string) (docset.Metrics, error) {
	ids, err := s.sets.Members(ctx, corpusName, name)
	if err != nil {
		return docset.Metrics{}, fmt.Errorf("load members: %w", err)
	}

	docs, err := s.docs.DocumentsByID(ctx, corpusName, ids)
	if err != nil {
		return docset.Metrics{}, fmt.Errorf("load documents: %w", err)
	}

	m := docset.Metrics{DocumentCount: len(docs)}
	for i := range docs {
		stats := docs[i].Stats()
		m.TotalWordCount += stats.WordCount
		m.TotalDocLength += stats.DocLength
		m.TotalDistinctWordCount += stats.DistinctWordCount
		m.AvgWordLength += stats.AvgWordLength
	}
	if m.DocumentCount > 0 {
		n := float64(m.DocumentCount)
		m.AvgWordCount = float64(m.TotalWordCount) / n
		m.AvgDocLength = float64(m.TotalDocLength) / n
		m.AvgDistinctWordCount = float64(m.TotalDistinctWordCount) / n
		m.AvgWordLength /= n
	} else {
		m.AvgWordLength = 0
	}

	if err := s.store.UpsertMetrics(ctx, corpusName, name, m); err != nil {
		return docset.Metrics{}, fmt.Errorf("store metrics: %w", err)
	}
	return m, nil
}

// ComputeQueryMetrics derives word count, term count, complexity, and yield
// ratios for an executed expression tree. Ratio divisors are floored at one so
// a degenerate tree never divides by zero.
func (s *Service) ComputeQueryMetrics(root search.Node, hitCount int) docset.QueryMetrics {
	wc := treeWordCount(root)
	tc := treeTermCount(root)
	return docset.QueryMetrics{
		WordCount:    wc,
		TermCount:    tc,
		Complexity:   treeComplexity(root),
		HitsPerWord:  float64(hitCount) / float64(max(wc, 1)),
		HitsPerTerm:  float64(hitCount) / float64(max(tc, 1)),
		HitsPerQuery: hitCount,
	}
}

// RecordQueryMetrics persists a query metrics row under its execution ID.
func (s *Service) RecordQueryMetrics(ctx context.Context, corpusName, execID string, m docset.QueryMetrics) error {
	if err := s.store.SaveQueryMetrics(ctx, corpusName, execID, m); err != nil {
		return fmt.Errorf("store query metrics: %w", err)
	}
	return nil
}

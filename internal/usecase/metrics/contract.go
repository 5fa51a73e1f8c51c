package metrics

import (
	"context"

	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
)

// SetReader provides set membership lookups (ISP).
type SetReader interface {
	Members(ctx context.Context, corpusName, name string) ([]string, error)
}

// DocumentReader resolves document IDs to documents with stored statistics (ISP).
type DocumentReader interface {
	DocumentsByID(ctx context.Context, corpusName string, ids []string) ([]document.Document, error)
}

// MetricsStore persists aggregate and per-query metric rows (ISP).
type MetricsStore interface {
	UpsertMetrics(ctx context.Context, corpusName, name string, m docset.Metrics) error
	SaveQueryMetrics(ctx context.Context, corpusName, execID string, m docset.QueryMetrics) error
}

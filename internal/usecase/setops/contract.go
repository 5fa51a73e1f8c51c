package setops

import (
	"context"

	"github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// CorpusReader provides corpus and document lookups (ISP).
type CorpusReader interface {
	Get(ctx context.Context, name string) (corpus.Corpus, error)
	ListDocuments(ctx context.Context, corpusName string) ([]document.Document, error)
	DocumentsByID(ctx context.Context, corpusName string, ids []string) ([]document.Document, error)
}

// SetStore persists document sets and their provenance (ISP).
type SetStore interface {
	CreateSet(ctx context.Context, set docset.DocumentSet, members []docset.Member) error
	GetSet(ctx context.Context, corpusName, name string) (docset.DocumentSet, error)
	GetSets(ctx context.Context, corpusName string, names []string) ([]docset.DocumentSet, []string, error)
	Members(ctx context.Context, corpusName, name string) ([]string, error)
	MemberCount(ctx context.Context, corpusName, name string) (int, error)
	GetMetrics(ctx context.Context, corpusName, name string) (docset.Metrics, error)
	RegisterTermSet(ctx context.Context, corpusName, term, setName string) error
	SaveExecution(ctx context.Context, exec docset.QueryExecution) error
}

// Backend executes compiled queries against the full-text index (ISP).
type Backend interface {
	Search(ctx context.Context, corpusName, compiled string, size int) ([]search.Hit, error)
	Exists(ctx context.Context, corpusName string) (bool, error)
	Fields(ctx context.Context, corpusName string) ([]string, error)
}

// Aggregator computes and persists metric rows (ISP).
type Aggregator interface {
	ComputeSetMetrics(ctx context.Context, corpusName, name string) (docset.Metrics, error)
	ComputeQueryMetrics(root search.Node, hitCount int) docset.QueryMetrics
	RecordQueryMetrics(ctx context.Context, corpusName, execID string, m docset.QueryMetrics) error
}

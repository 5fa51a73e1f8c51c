package coverage

import (
	"context"

	"github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
	"github.com/kailas-cloud/corpusd/internal/usecase/setops"
)

// CorpusReader looks up corpora (ISP).
type CorpusReader interface {
	Get(ctx context.Context, name string) (corpus.Corpus, error)
}

// SetReader provides set, membership, and term library lookups (ISP).
type SetReader interface {
	GetSet(ctx context.Context, corpusName, name string) (docset.DocumentSet, error)
	Members(ctx context.Context, corpusName, name string) ([]string, error)
	TermSets(ctx context.Context, corpusName string) (map[string]string, error)
}

// SpecStore persists coverage run records (ISP).
type SpecStore interface {
	SaveSpec(ctx context.Context, spec *exhaustive.Spec) error
	GetSpec(ctx context.Context, corpusName, id string) (exhaustive.Spec, error)
}

// Executor runs a compiled query and materializes the result set (ISP).
type Executor interface {
	ExecuteQuery(ctx context.Context, corpusName, name string, p setops.Params, root search.Node) (setops.QueryResult, error)
}

// Recorder persists query metric rows (ISP).
type Recorder interface {
	RecordQueryMetrics(ctx context.Context, corpusName, execID string, m docset.QueryMetrics) error
}

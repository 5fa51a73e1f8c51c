// Package corpusd is the embedded SDK entry point: it wires the storage,
// repository, and service layers directly over a Redis connection, without
// the HTTP transport.
package corpusd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/corpusd/internal/db"
	dbRedis "github.com/kailas-cloud/corpusd/internal/db/redis"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	corpusrepo "github.com/kailas-cloud/corpusd/internal/repository/corpus"
	docsetrepo "github.com/kailas-cloud/corpusd/internal/repository/docset"
	searchrepo "github.com/kailas-cloud/corpusd/internal/repository/search"
	corporauc "github.com/kailas-cloud/corpusd/internal/usecase/corpora"
	coverageuc "github.com/kailas-cloud/corpusd/internal/usecase/coverage"
	metricsuc "github.com/kailas-cloud/corpusd/internal/usecase/metrics"
	setopsuc "github.com/kailas-cloud/corpusd/internal/usecase/setops"
	termtestuc "github.com/kailas-cloud/corpusd/internal/usecase/termtest"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the corpusd SDK entry point.
type Client struct {
	store    db.Store
	corpora  *corporauc.Service
	ops      *setopsuc.Service
	coverage *coverageuc.Service
	termtest *termtestuc.Service
}

// New creates a corpusd Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		maxHits:     10000,
		batchSize:   100,
		concurrency: 4,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("corpusd: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("corpusd: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("corpusd: database not ready: %w", err)
	}

	corpusRepo := corpusrepo.New(store)
	setRepo := docsetrepo.New(store, cfg.batchSize)
	backendRepo := searchrepo.New(store)

	metricsSvc := metricsuc.New(setRepo, corpusRepo, setRepo)
	opsSvc := setopsuc.New(corpusRepo, setRepo, backendRepo, metricsSvc, cfg.maxHits)

	return &Client{
		store:    store,
		corpora:  corporauc.New(corpusRepo),
		ops:      opsSvc,
		coverage: coverageuc.New(corpusRepo, setRepo, setRepo, opsSvc, metricsSvc),
		termtest: termtestuc.New(opsSvc, setRepo, cfg.concurrency, 0),
	}, nil
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}

// Document is one document to ingest. ID is optional.
type Document struct {
	ID      string
	Content string
}

// SetInfo summarizes a materialized document set.
type SetInfo struct {
	ID          string
	Name        string
	Corpus      string
	Kind        string
	MemberCount int
}

// CoverageRun is the outcome of one exhaustive coverage run.
type CoverageRun struct {
	ID           string
	SearchText   string
	ResultSet    string
	Selected     []string
	CoveredCount int
	TargetSize   int
}

// CreateCorpus provisions a corpus with its search index.
func (c *Client) CreateCorpus(ctx context.Context, name string) error {
	_, err := c.corpora.Create(ctx, name)
	return err
}

// Ingest stores documents in a corpus, computing their text statistics.
// Returns the number of stored documents.
func (c *Client) Ingest(ctx context.Context, corpus string, docs []Document) (int, error) {
	inputs := make([]corporauc.DocumentInput, len(docs))
	for i, d := range docs {
		inputs[i] = corporauc.DocumentInput{ID: d.ID, Content: d.Content}
	}
	return c.corpora.Ingest(ctx, corpus, inputs)
}

// Snapshot materializes the full corpus as a named set.
func (c *Client) Snapshot(ctx context.Context, corpus, name string) (SetInfo, error) {
	return c.runOp(ctx, corpus, setopsuc.Params{Kind: docset.KindSnapshot, Name: name})
}

// Union materializes the union of the named operand sets.
func (c *Client) Union(ctx context.Context, corpus, name string, operands ...string) (SetInfo, error) {
	return c.combine(ctx, corpus, name, docset.KindUnion, operands)
}

// Intersect materializes the intersection of the named operand sets.
func (c *Client) Intersect(ctx context.Context, corpus, name string, operands ...string) (SetInfo, error) {
	return c.combine(ctx, corpus, name, docset.KindIntersection, operands)
}

func (c *Client) combine(
	ctx context.Context, corpus, name string, kind docset.Kind, operands []string,
) (SetInfo, error) {
	text := ""
	for i, op := range operands {
		if i > 0 {
			text += ","
		}
		text += op
	}
	return c.runOp(ctx, corpus, setopsuc.Params{Kind: kind, Name: name, OperandText: text, Delimiter: ","})
}

// Search runs a keyword search and materializes the hits as a named set.
func (c *Client) Search(ctx context.Context, corpus, name, keywords string) (SetInfo, error) {
	return c.runOp(ctx, corpus, setopsuc.Params{
		Kind: docset.KindKeywordSearch, Name: name, OperandText: keywords,
	})
}

// SearchQuery runs a structured query built with Term/Phrase/And/Or and
// materializes the hits as a named set.
func (c *Client) SearchQuery(ctx context.Context, corpus, name string, q *Query) (SetInfo, error) {
	text, err := q.JSON()
	if err != nil {
		return SetInfo{}, err
	}
	return c.runOp(ctx, corpus, setopsuc.Params{
		Kind: docset.KindJSONSearch, Name: name, OperandText: text,
	})
}

// TermTests tests every term against the corpus, populating its term library.
func (c *Client) TermTests(ctx context.Context, corpus string, terms []string) (termtestuc.Report, error) {
	return c.termtest.Run(ctx, corpus, terms)
}

// Coverage runs an exhaustive coverage search: greedy term selection from the
// corpus's term library until threshold coverage of the target set.
func (c *Client) Coverage(
	ctx context.Context, corpus, targetSet string, threshold float64,
) (CoverageRun, error) {
	spec, err := c.coverage.Run(ctx, corpus, coverageuc.RunParams{
		TargetSet: targetSet,
		Selection: exhaustive.SelectMaxHits,
		Eval:      exhaustive.EvalIncMax,
		Threshold: threshold,
	})
	if err != nil {
		return CoverageRun{}, err
	}
	return CoverageRun{
		ID:           spec.ID(),
		SearchText:   spec.SearchText(),
		ResultSet:    spec.ResultSet(),
		Selected:     spec.Selected(),
		CoveredCount: spec.CoveredCount(),
		TargetSize:   spec.TargetSize(),
	}, nil
}

// Members returns the member document IDs of a set.
func (c *Client) Members(ctx context.Context, corpus, set string) ([]string, error) {
	return c.ops.SetMembers(ctx, corpus, set)
}

func (c *Client) runOp(ctx context.Context, corpus string, p setopsuc.Params) (SetInfo, error) {
	set, err := c.ops.Run(ctx, corpus, p)
	if err != nil {
		return SetInfo{}, err
	}
	_, _, count, err := c.ops.Describe(ctx, corpus, set.Name())
	if err != nil {
		return SetInfo{}, err
	}
	op := set.Operation()
	return SetInfo{
		ID:          set.ID(),
		Name:        set.Name(),
		Corpus:      set.Corpus(),
		Kind:        string(op.Kind()),
		MemberCount: count,
	}, nil
}

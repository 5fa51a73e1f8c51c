// Package setops materializes document sets from snapshots, set algebra, and
// full-text query execution.
package setops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
	"github.com/kailas-cloud/corpusd/internal/logger"
	opmetrics "github.com/kailas-cloud/corpusd/internal/metrics"
	"github.com/kailas-cloud/corpusd/internal/query"
)

const defaultMaxHits = 10000

// Params describes one set operation request.
type Params struct {
	Kind        docset.Kind
	Name        string // optional, generated when empty
	OperandText string // set-name list, query text, or raw JSON query
	Delimiter   string // operand separator for UNION/INTERSECTION, "," when empty
}

// QueryResult is the outcome of one executed query: the materialized set, the
// execution record ID, and the number of confirmed hits persisted as members.
type QueryResult struct {
	Set    docset.DocumentSet
	ExecID string
	Hits   int
}

// Service is the set operation engine.
type Service struct {
	corpora CorpusReader
	sets    SetStore
	backend Backend
	agg     Aggregator
	maxHits int
}

// New creates a set operation service. maxHits bounds backend result pages;
// values <= 0 default to 10000.
func New(corpora CorpusReader, sets SetStore, backend Backend, agg Aggregator, maxHits int) *Service {
	if maxHits <= 0 {
		maxHits = defaultMaxHits
	}
	return &Service{corpora: corpora, sets: sets, backend: backend, agg: agg, maxHits: maxHits}
}

// Run executes one set operation against a corpus and returns the created
// set. Every run, regardless of kind, ends with a metrics recomputation for
// the new set.
func (s *Service) Run(ctx context.Context, corpusName string, p Params) (docset.DocumentSet, error) {
	set, err := s.run(ctx, corpusName, p)
	opmetrics.ObserveSetOperation(string(p.Kind), err)
	return set, err
}

func (s *Service) run(ctx context.Context, corpusName string, p Params) (docset.DocumentSet, error) {
	if _, err := s.corpora.Get(ctx, corpusName); err != nil {
		return docset.DocumentSet{}, fmt.Errorf("get corpus: %w", err)
	}

	name := p.Name
	if name == "" {
		name = defaultSetName(p.Kind)
	}

	switch p.Kind {
	case docset.KindSnapshot:
		return s.snapshot(ctx, corpusName, name, p)

	case docset.KindUnion, docset.KindIntersection:
		return s.combine(ctx, corpusName, name, p)

	case docset.KindKeywordSearch, docset.KindJSONSearch, docset.KindTermTest:
		root, err := buildRoot(p)
		if err != nil {
			return docset.DocumentSet{}, err
		}

		res, err := s.ExecuteQuery(ctx, corpusName, name, p, root)
		if err != nil {
			return docset.DocumentSet{}, err
		}

		qm := s.agg.ComputeQueryMetrics(root, res.Hits)
		if err := s.agg.RecordQueryMetrics(ctx, corpusName, res.ExecID, qm); err != nil {
			return docset.DocumentSet{}, err
		}

		if p.Kind == docset.KindTermTest {
			term := strings.TrimSpace(p.OperandText)
			if err := s.sets.RegisterTermSet(ctx, corpusName, term, name); err != nil {
				return docset.DocumentSet{}, err
			}
		}
		return res.Set, nil

	default:
		return docset.DocumentSet{}, fmt.Errorf("%w: unsupported operation kind %q", domain.ErrInvalidQuery, p.Kind)
	}
}

// snapshot materializes the full corpus as a set. Snapshot members carry no
// rank or score.
func (s *Service) snapshot(ctx context.Context, corpusName, name string, p Params) (docset.DocumentSet, error) {
	docs, err := s.corpora.ListDocuments(ctx, corpusName)
	if err != nil {
		return docset.DocumentSet{}, fmt.Errorf("list documents: %w", err)
	}

	members := make([]docset.Member, len(docs))
	for i := range docs {
		members[i] = docset.Member{DocID: docs[i].ID()}
	}
	return s.finishSet(ctx, corpusName, name, p, members)
}

// combine resolves the named operand sets and computes their union or
// intersection. Every missing operand is reported in one error; nothing is
// written when any operand is missing.
func (s *Service) combine(ctx context.Context, corpusName, name string, p Params) (docset.DocumentSet, error) {
	names := splitOperands(p.OperandText, p.Delimiter)
	if len(names) == 0 {
		return docset.DocumentSet{}, domain.ErrEmptyQueryText
	}

	_, missing, err := s.sets.GetSets(ctx, corpusName, names)
	if err != nil {
		return docset.DocumentSet{}, fmt.Errorf("resolve operand sets: %w", err)
	}
	if len(missing) > 0 {
		return docset.DocumentSet{}, domain.NewSetsNotFound(missing)
	}

	memberships := make([][]string, len(names))
	for i, n := range names {
		ids, err := s.sets.Members(ctx, corpusName, n)
		if err != nil {
			return docset.DocumentSet{}, fmt.Errorf("load members of %s: %w", n, err)
		}
		memberships[i] = ids
	}

	var ids []string
	if p.Kind == docset.KindUnion {
		ids = unionIDs(memberships)
	} else {
		ids = intersectIDs(memberships)
	}

	members := make([]docset.Member, len(ids))
	for i, id := range ids {
		members[i] = docset.Member{DocID: id}
	}
	return s.finishSet(ctx, corpusName, name, p, members)
}

// ExecuteQuery compiles a query tree, runs it against the backend, confirms
// the hits against stored documents, and materializes the result set with its
// execution record. Query metrics are left to the caller since coverage runs
// derive them differently than direct searches.
func (s *Service) ExecuteQuery(
	ctx context.Context, corpusName, name string, p Params, root search.Node,
) (QueryResult, error) {
	compiled, err := query.Compile(root)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	start := time.Now()
	hits, err := s.backend.Search(ctx, corpusName, compiled, s.maxHits)
	opmetrics.ObserveBackendSearch(start)
	if err != nil {
		return QueryResult{}, fmt.Errorf("execute query: %w", err)
	}
	if len(hits) == 0 {
		s.diagnoseEmptyResult(ctx, corpusName, compiled)
	}

	members, err := s.confirmHits(ctx, corpusName, hits)
	if err != nil {
		return QueryResult{}, err
	}

	set, err := s.finishSet(ctx, corpusName, name, p, members)
	if err != nil {
		return QueryResult{}, err
	}

	exec := docset.QueryExecution{
		ID:      uuid.NewString(),
		Corpus:  corpusName,
		Root:    root,
		SetName: name,
	}
	if err := s.sets.SaveExecution(ctx, exec); err != nil {
		return QueryResult{}, fmt.Errorf("save execution: %w", err)
	}

	return QueryResult{Set: set, ExecID: exec.ID, Hits: len(members)}, nil
}

// confirmHits keeps only hits that resolve to stored documents, assigning
// 1-based ranks in backend order over the survivors. A backend hit without a
// stored document is dropped silently.
func (s *Service) confirmHits(ctx context.Context, corpusName string, hits []search.Hit) ([]docset.Member, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}
	docs, err := s.corpora.DocumentsByID(ctx, corpusName, ids)
	if err != nil {
		return nil, fmt.Errorf("confirm hits: %w", err)
	}

	known := make(map[string]struct{}, len(docs))
	for i := range docs {
		known[docs[i].ID()] = struct{}{}
	}

	members := make([]docset.Member, 0, len(docs))
	rank := 0
	for _, h := range hits {
		if _, ok := known[h.DocID]; !ok {
			continue
		}
		rank++
		members = append(members, docset.Member{DocID: h.DocID, Rank: rank, Score: h.Score})
	}
	return members, nil
}

// finishSet persists the set and recomputes its metrics row.
func (s *Service) finishSet(
	ctx context.Context, corpusName, name string, p Params, members []docset.Member,
) (docset.DocumentSet, error) {
	op := docset.NewOperation(p.Kind, p.OperandText, p.Delimiter)
	set, err := docset.New(uuid.NewString(), name, corpusName, op, time.Now().UnixMilli())
	if err != nil {
		return docset.DocumentSet{}, err
	}

	if err := s.sets.CreateSet(ctx, set, members); err != nil {
		return docset.DocumentSet{}, fmt.Errorf("create set %s: %w", name, err)
	}
	if _, err := s.agg.ComputeSetMetrics(ctx, corpusName, name); err != nil {
		return docset.DocumentSet{}, fmt.Errorf("compute set metrics: %w", err)
	}
	return set, nil
}

// Describe returns a set with its stored metrics row and member count.
func (s *Service) Describe(ctx context.Context, corpusName, name string) (
	docset.DocumentSet, docset.Metrics, int, error,
) {
	set, err := s.sets.GetSet(ctx, corpusName, name)
	if err != nil {
		return docset.DocumentSet{}, docset.Metrics{}, 0, err
	}

	m, err := s.sets.GetMetrics(ctx, corpusName, name)
	if err != nil {
		return docset.DocumentSet{}, docset.Metrics{}, 0, err
	}

	count, err := s.sets.MemberCount(ctx, corpusName, name)
	if err != nil {
		return docset.DocumentSet{}, docset.Metrics{}, 0, err
	}
	return set, m, count, nil
}

// SetMembers returns a set's member document IDs.
func (s *Service) SetMembers(ctx context.Context, corpusName, name string) ([]string, error) {
	if _, err := s.sets.GetSet(ctx, corpusName, name); err != nil {
		return nil, err
	}
	return s.sets.Members(ctx, corpusName, name)
}

// diagnoseEmptyResult logs why a query may have matched nothing. Diagnostics
// never fail the operation; an empty result set is a valid outcome.
func (s *Service) diagnoseEmptyResult(ctx context.Context, corpusName, compiled string) {
	log := logger.FromContext(ctx)

	exists, err := s.backend.Exists(ctx, corpusName)
	if err != nil {
		log.Warn("index diagnostics unavailable", zap.String("corpus", corpusName), zap.Error(err))
		return
	}
	if !exists {
		log.Warn("search index missing for corpus", zap.String("corpus", corpusName))
		return
	}

	fields, err := s.backend.Fields(ctx, corpusName)
	if err != nil {
		log.Warn("index field diagnostics unavailable", zap.String("corpus", corpusName), zap.Error(err))
		return
	}
	log.Debug("query matched no documents",
		zap.String("corpus", corpusName),
		zap.String("query", compiled),
		zap.Strings("index_fields", fields),
	)
}

// buildRoot turns a search operation's operand text into an expression tree.
func buildRoot(p Params) (search.Node, error) {
	text := strings.TrimSpace(p.OperandText)
	if text == "" {
		return nil, domain.ErrEmptyQueryText
	}

	switch p.Kind {
	case docset.KindKeywordSearch:
		return search.Term{Text: text}, nil
	case docset.KindTermTest:
		// Multi-word terms are tested as exact phrases.
		return search.Term{Text: text, Phrase: len(strings.Fields(text)) > 1}, nil
	case docset.KindJSONSearch:
		root, err := search.Parse([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		return root, nil
	default:
		return nil, fmt.Errorf("%w: kind %q carries no query", domain.ErrInvalidQuery, p.Kind)
	}
}

// splitOperands parses a delimited set-name list, dropping empties.
func splitOperands(text, delimiter string) []string {
	if delimiter == "" {
		delimiter = ","
	}
	parts := strings.Split(text, delimiter)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if n := strings.TrimSpace(part); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// unionIDs merges memberships, keeping first-seen order.
func unionIDs(memberships [][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ids := range memberships {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// intersectIDs keeps IDs present in every membership, ordered as in the first.
func intersectIDs(memberships [][]string) []string {
	if len(memberships) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, ids := range memberships {
		inSet := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := inSet[id]; ok {
				continue
			}
			inSet[id] = struct{}{}
			counts[id]++
		}
	}

	var out []string
	seen := make(map[string]struct{})
	for _, id := range memberships[0] {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if counts[id] == len(memberships) {
			out = append(out, id)
		}
	}
	return out
}

func defaultSetName(kind docset.Kind) string {
	return strings.ToLower(string(kind)) + "-" + uuid.NewString()[:8]
}

package coverage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
	"github.com/kailas-cloud/corpusd/internal/logger"
	opmetrics "github.com/kailas-cloud/corpusd/internal/metrics"
	"github.com/kailas-cloud/corpusd/internal/usecase/setops"
)

// RunParams describes one exhaustive coverage run request.
type RunParams struct {
	TargetSet string
	Selection exhaustive.SelectionMode
	Eval      exhaustive.EvalMode
	TermCount int     // candidate pool size per round, 0 = unlimited
	Threshold float64 // coverage fraction in (0,1]
	Name      string  // result set name, generated when empty
}

// Service runs exhaustive coverage searches against a corpus's term library.
type Service struct {
	corpora  CorpusReader
	sets     SetReader
	specs    SpecStore
	executor Executor
	recorder Recorder
}

// New creates a coverage service.
func New(corpora CorpusReader, sets SetReader, specs SpecStore, executor Executor, recorder Recorder) *Service {
	return &Service{corpora: corpora, sets: sets, specs: specs, executor: executor, recorder: recorder}
}

// Run executes one coverage run: it greedily selects terms from the corpus's
// term library until the selection covers the threshold fraction of the
// target set, then materializes the union query of the selected terms as a
// new set. The run record is persisted before selection starts and again once
// the result is attached, so an interrupted run stays visible as incomplete.
func (s *Service) Run(ctx context.Context, corpusName string, p RunParams) (exhaustive.Spec, error) {
	if _, err := s.corpora.Get(ctx, corpusName); err != nil {
		return exhaustive.Spec{}, fmt.Errorf("get corpus: %w", err)
	}
	if _, err := s.sets.GetSet(ctx, corpusName, p.TargetSet); err != nil {
		return exhaustive.Spec{}, fmt.Errorf("get target set: %w", err)
	}

	spec, err := exhaustive.New(
		uuid.NewString(), corpusName, p.TargetSet,
		p.Selection, p.Eval, p.TermCount, p.Threshold, time.Now().UnixMilli(),
	)
	if err != nil {
		return exhaustive.Spec{}, err
	}
	if err := s.specs.SaveSpec(ctx, &spec); err != nil {
		return exhaustive.Spec{}, err
	}

	library, err := s.loadLibrary(ctx, corpusName)
	if err != nil {
		return exhaustive.Spec{}, err
	}

	target, err := s.sets.Members(ctx, corpusName, p.TargetSet)
	if err != nil {
		return exhaustive.Spec{}, fmt.Errorf("load target members: %w", err)
	}

	outcome, err := Generate(ctx, target, library, p.Selection, p.Eval, p.TermCount, p.Threshold)
	if err != nil {
		return exhaustive.Spec{}, fmt.Errorf("coverage selection: %w", err)
	}

	if len(outcome.Selected) == 0 {
		// Nothing to search for. The run still completes with its coverage
		// numbers; no query is compiled and no result set exists.
		spec.Complete("", "", nil, outcome.CoveredInTarget, outcome.TargetSize)
		if err := s.specs.SaveSpec(ctx, &spec); err != nil {
			return exhaustive.Spec{}, err
		}
		opmetrics.ObserveCoverageRun(0, outcome.CoveredInTarget, outcome.TargetSize)
		return spec, nil
	}

	searchText := renderSearchText(outcome.Selected)
	resultSet := p.Name
	if resultSet == "" {
		resultSet = "exhaustive-" + spec.ID()[:8]
	}

	params := setops.Params{
		Kind:        docset.KindExhaustive,
		Name:        resultSet,
		OperandText: searchText,
	}
	res, err := s.executor.ExecuteQuery(ctx, corpusName, resultSet, params, buildQuery(outcome.Selected))
	if err != nil {
		return exhaustive.Spec{}, err
	}

	qm := coverageQueryMetrics(outcome.Selected, res.Hits)
	if err := s.recorder.RecordQueryMetrics(ctx, corpusName, res.ExecID, qm); err != nil {
		return exhaustive.Spec{}, err
	}

	spec.Complete(searchText, resultSet, outcome.Selected, outcome.CoveredInTarget, outcome.TargetSize)
	if err := s.specs.SaveSpec(ctx, &spec); err != nil {
		return exhaustive.Spec{}, err
	}
	opmetrics.ObserveCoverageRun(len(outcome.Selected), outcome.CoveredInTarget, outcome.TargetSize)

	logger.FromContext(ctx).Info("coverage run completed",
		zap.String("corpus", corpusName),
		zap.String("target_set", p.TargetSet),
		zap.String("result_set", resultSet),
		zap.Int("selected_terms", len(outcome.Selected)),
		zap.Int("covered", outcome.CoveredInTarget),
		zap.Int("target_size", outcome.TargetSize),
	)
	return spec, nil
}

// Get returns a stored coverage run record.
func (s *Service) Get(ctx context.Context, corpusName, id string) (exhaustive.Spec, error) {
	return s.specs.GetSpec(ctx, corpusName, id)
}

// loadLibrary resolves the corpus's term library to candidate terms with
// their full hit sets. Terms are sorted so the candidate base order is
// deterministic before the selection mode reorders it.
func (s *Service) loadLibrary(ctx context.Context, corpusName string) ([]TermHits, error) {
	termSets, err := s.sets.TermSets(ctx, corpusName)
	if err != nil {
		return nil, fmt.Errorf("load term library: %w", err)
	}
	if len(termSets) == 0 {
		return nil, domain.ErrNoTermLibrary
	}

	terms := make([]string, 0, len(termSets))
	for term := range termSets {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	library := make([]TermHits, 0, len(terms))
	for _, term := range terms {
		docs, err := s.sets.Members(ctx, corpusName, termSets[term])
		if err != nil {
			return nil, fmt.Errorf("load hits of term %q: %w", term, err)
		}
		library = append(library, TermHits{Term: term, Docs: docs})
	}
	return library, nil
}

// buildQuery turns the selected terms into an expression tree: a single term
// stands alone, several are combined with OR. Multi-word terms match as
// phrases, mirroring how term tests queried them.
func buildQuery(selected []string) search.Node {
	children := make([]search.Node, len(selected))
	for i, term := range selected {
		children[i] = search.Term{Text: term, Phrase: len(strings.Fields(term)) > 1}
	}
	if len(children) == 1 {
		return children[0]
	}
	return search.Compound{Op: search.Or, Children: children}
}

// renderSearchText renders the selected terms as human-readable query text.
// Multi-word terms are quoted; several terms are OR-joined in parentheses.
func renderSearchText(selected []string) string {
	parts := make([]string, len(selected))
	for i, term := range selected {
		if len(strings.Fields(term)) > 1 {
			parts[i] = `"` + term + `"`
		} else {
			parts[i] = term
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// coverageQueryMetrics derives query metrics from the selection itself rather
// than the executed tree. Complexity counts the terms plus the enclosing OR
// and its grouping when more than one term was combined.
func coverageQueryMetrics(selected []string, hits int) docset.QueryMetrics {
	wc := 0
	for _, term := range selected {
		wc += len(strings.Fields(term))
	}
	tc := len(selected)

	complexity := tc
	if tc > 1 {
		complexity = tc + 2
	}

	return docset.QueryMetrics{
		WordCount:    wc,
		TermCount:    tc,
		Complexity:   complexity,
		HitsPerWord:  float64(hits) / float64(max(wc, 1)),
		HitsPerTerm:  float64(hits) / float64(max(tc, 1)),
		HitsPerQuery: hits,
	}
}

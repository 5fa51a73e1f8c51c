package coverage

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
	"github.com/kailas-cloud/corpusd/internal/usecase/setops"
)

// --- Mocks ---

type mockCorpora struct{ getErr error }

func (m *mockCorpora) Get(_ context.Context, name string) (corpus.Corpus, error) {
	if m.getErr != nil {
		return corpus.Corpus{}, m.getErr
	}
	return corpus.Reconstruct(name, "idx", 0), nil
}

type mockSets struct {
	memberships map[string][]string
	termSets    map[string]string
}

func (m *mockSets) GetSet(_ context.Context, corpusName, name string) (docset.DocumentSet, error) {
	if _, ok := m.memberships[name]; !ok {
		return docset.DocumentSet{}, domain.ErrSetNotFound
	}
	return docset.Reconstruct("id", name, corpusName, docset.Operation{}, 0), nil
}

func (m *mockSets) Members(_ context.Context, _, name string) ([]string, error) {
	return m.memberships[name], nil
}

func (m *mockSets) TermSets(_ context.Context, _ string) (map[string]string, error) {
	return m.termSets, nil
}

type mockSpecs struct {
	saved []exhaustive.Spec
}

func (m *mockSpecs) SaveSpec(_ context.Context, spec *exhaustive.Spec) error {
	m.saved = append(m.saved, *spec)
	return nil
}

func (m *mockSpecs) GetSpec(_ context.Context, _, _ string) (exhaustive.Spec, error) {
	if len(m.saved) == 0 {
		return exhaustive.Spec{}, domain.ErrRunNotFound
	}
	return m.saved[len(m.saved)-1], nil
}

type mockExecutor struct {
	params  setops.Params
	root    search.Node
	hits    int
	execErr error
}

func (m *mockExecutor) ExecuteQuery(
	_ context.Context, corpusName, name string, p setops.Params, root search.Node,
) (setops.QueryResult, error) {
	if m.execErr != nil {
		return setops.QueryResult{}, m.execErr
	}
	m.params = p
	m.root = root
	set := docset.Reconstruct("id", name, corpusName, docset.NewOperation(p.Kind, p.OperandText, ""), 0)
	return setops.QueryResult{Set: set, ExecID: "exec-1", Hits: m.hits}, nil
}

type mockRecorder struct {
	recorded map[string]docset.QueryMetrics
}

func (m *mockRecorder) RecordQueryMetrics(_ context.Context, _, execID string, qm docset.QueryMetrics) error {
	if m.recorded == nil {
		m.recorded = make(map[string]docset.QueryMetrics)
	}
	m.recorded[execID] = qm
	return nil
}

func params(target string) RunParams {
	return RunParams{
		TargetSet: target,
		Selection: exhaustive.SelectMaxHits,
		Eval:      exhaustive.EvalIncMax,
		Threshold: 1.0,
	}
}

// --- Tests ---

func TestRun_SelectsAndMaterializes(t *testing.T) {
	sets := &mockSets{
		memberships: map[string][]string{
			"target":     {"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"},
			"term-alpha": {"d1", "d2", "d3", "d4", "d5", "d6"},
			"term-beta":  {"d7", "d8", "d9", "d10"},
		},
		termSets: map[string]string{"alpha": "term-alpha", "beta": "term-beta"},
	}
	specs := &mockSpecs{}
	executor := &mockExecutor{hits: 10}
	recorder := &mockRecorder{}
	svc := New(&mockCorpora{}, sets, specs, executor, recorder)

	spec, err := svc.Run(context.Background(), "c", params("target"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !spec.Completed() {
		t.Error("expected completed run")
	}
	if got := spec.Selected(); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", got)
	}
	if spec.SearchText() != "(alpha OR beta)" {
		t.Errorf("expected search text '(alpha OR beta)', got %q", spec.SearchText())
	}
	if spec.CoveredCount() != 10 || spec.TargetSize() != 10 {
		t.Errorf("expected 10/10 coverage, got %d/%d", spec.CoveredCount(), spec.TargetSize())
	}

	// Saved once pending, once completed.
	if len(specs.saved) != 2 {
		t.Fatalf("expected 2 spec saves, got %d", len(specs.saved))
	}
	if specs.saved[0].Completed() {
		t.Error("first save must record a pending run")
	}

	if executor.params.Kind != docset.KindExhaustive {
		t.Errorf("expected EXHAUSTIVE operation, got %q", executor.params.Kind)
	}
	root, ok := executor.root.(search.Compound)
	if !ok || root.Op != search.Or || len(root.Children) != 2 {
		t.Errorf("expected OR compound over both terms, got %#v", executor.root)
	}

	qm, ok := recorder.recorded["exec-1"]
	if !ok {
		t.Fatal("expected query metrics recorded")
	}
	if qm.TermCount != 2 || qm.Complexity != 4 {
		t.Errorf("expected term count 2 and complexity 4, got %+v", qm)
	}
	if qm.HitsPerTerm != 5 {
		t.Errorf("expected 5 hits per term, got %g", qm.HitsPerTerm)
	}
}

func TestRun_SingleTermSearchText(t *testing.T) {
	sets := &mockSets{
		memberships: map[string][]string{
			"target":      {"d1"},
			"term-phrase": {"d1"},
		},
		termSets: map[string]string{"data plane": "term-phrase"},
	}
	executor := &mockExecutor{hits: 1}
	svc := New(&mockCorpora{}, sets, &mockSpecs{}, executor, &mockRecorder{})

	spec, err := svc.Run(context.Background(), "c", params("target"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if spec.SearchText() != `"data plane"` {
		t.Errorf("expected quoted phrase without parens, got %q", spec.SearchText())
	}
	term, ok := executor.root.(search.Term)
	if !ok || !term.Phrase {
		t.Errorf("expected single phrase term root, got %#v", executor.root)
	}
}

func TestRun_NoTermLibrary(t *testing.T) {
	sets := &mockSets{
		memberships: map[string][]string{"target": {"d1"}},
		termSets:    map[string]string{},
	}
	svc := New(&mockCorpora{}, sets, &mockSpecs{}, &mockExecutor{}, &mockRecorder{})

	_, err := svc.Run(context.Background(), "c", params("target"))
	if !errors.Is(err, domain.ErrNoTermLibrary) {
		t.Fatalf("expected ErrNoTermLibrary, got %v", err)
	}
}

func TestRun_TargetMissing(t *testing.T) {
	sets := &mockSets{memberships: map[string][]string{}}
	svc := New(&mockCorpora{}, sets, &mockSpecs{}, &mockExecutor{}, &mockRecorder{})

	_, err := svc.Run(context.Background(), "c", params("nope"))
	if !errors.Is(err, domain.ErrSetNotFound) {
		t.Fatalf("expected ErrSetNotFound, got %v", err)
	}
}

func TestRun_EmptySelectionCompletesWithoutQuery(t *testing.T) {
	sets := &mockSets{
		memberships: map[string][]string{
			"target":       {"d1", "d2"},
			"term-outside": {"x1"},
		},
		termSets: map[string]string{"outside": "term-outside"},
	}
	specs := &mockSpecs{}
	executor := &mockExecutor{execErr: errors.New("must not be called")}
	svc := New(&mockCorpora{}, sets, specs, executor, &mockRecorder{})

	spec, err := svc.Run(context.Background(), "c", params("target"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !spec.Completed() {
		t.Error("expected completed no-op run")
	}
	if spec.ResultSet() != "" || spec.SearchText() != "" {
		t.Errorf("no-op run must not materialize a set, got %q / %q", spec.ResultSet(), spec.SearchText())
	}
	if spec.CoveredCount() != 0 || spec.TargetSize() != 2 {
		t.Errorf("expected 0/2 coverage, got %d/%d", spec.CoveredCount(), spec.TargetSize())
	}
}

func TestRun_InvalidThreshold(t *testing.T) {
	sets := &mockSets{memberships: map[string][]string{"target": {"d1"}}}
	svc := New(&mockCorpora{}, sets, &mockSpecs{}, &mockExecutor{}, &mockRecorder{})

	p := params("target")
	p.Threshold = 1.5
	if _, err := svc.Run(context.Background(), "c", p); err == nil {
		t.Error("expected error for threshold above 1")
	}
}

package termtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/usecase/setops"
)

// --- Mocks ---

type mockOps struct {
	mu      sync.Mutex
	runs    []setops.Params
	failFor map[string]error // operand text -> error
}

func (m *mockOps) Run(_ context.Context, corpusName string, p setops.Params) (docset.DocumentSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, p)
	if err, ok := m.failFor[p.OperandText]; ok {
		return docset.DocumentSet{}, err
	}
	return docset.Reconstruct("id", p.Name, corpusName, docset.NewOperation(p.Kind, p.OperandText, ""), 0), nil
}

type mockSets struct {
	counts map[string]int
}

func (m *mockSets) MemberCount(_ context.Context, _, name string) (int, error) {
	return m.counts[name], nil
}

// --- Tests ---

func TestRun_Batch(t *testing.T) {
	ops := &mockOps{}
	sets := &mockSets{counts: map[string]int{"term-alpha": 3, "term-beta-gamma": 1}}
	svc := New(ops, sets, 2, 0)

	report, err := svc.Run(context.Background(), "c", []string{"alpha", "beta gamma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Requested != 2 || report.Succeeded != 2 {
		t.Errorf("expected 2/2, got %d/%d", report.Succeeded, report.Requested)
	}
	if len(ops.runs) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops.runs))
	}
	for _, p := range ops.runs {
		if p.Kind != docset.KindTermTest {
			t.Errorf("expected TERM_TEST kind, got %q", p.Kind)
		}
	}

	byTerm := make(map[string]TermResult)
	for _, r := range report.Results {
		byTerm[r.Term] = r
	}
	if r := byTerm["alpha"]; r.SetName != "term-alpha" || r.Hits != 3 {
		t.Errorf("unexpected result for alpha: %+v", r)
	}
	if r := byTerm["beta gamma"]; r.SetName != "term-beta-gamma" || r.Hits != 1 {
		t.Errorf("unexpected result for 'beta gamma': %+v", r)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	ops := &mockOps{failFor: map[string]error{"bad": errors.New("backend exploded")}}
	sets := &mockSets{counts: map[string]int{}}
	svc := New(ops, sets, 1, 0)

	report, err := svc.Run(context.Background(), "c", []string{"good", "bad", "fine"})
	if err != nil {
		t.Fatalf("a failed term must not abort the batch: %v", err)
	}

	if report.Requested != 3 || report.Succeeded != 2 {
		t.Errorf("expected 2/3, got %d/%d", report.Succeeded, report.Requested)
	}

	var failed *TermResult
	for i := range report.Results {
		if report.Results[i].Term == "bad" {
			failed = &report.Results[i]
		}
	}
	if failed == nil || failed.Err == "" {
		t.Errorf("expected recorded failure for 'bad', got %+v", report.Results)
	}
}

func TestRun_DedupesAndTrims(t *testing.T) {
	ops := &mockOps{}
	svc := New(ops, &mockSets{counts: map[string]int{}}, 1, 0)

	report, err := svc.Run(context.Background(), "c", []string{" alpha ", "alpha", "", "beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Requested != 2 {
		t.Errorf("expected 2 deduplicated terms, got %d", report.Requested)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	svc := New(&mockOps{}, &mockSets{}, 1, 0)

	_, err := svc.Run(context.Background(), "c", []string{"  ", ""})
	if !errors.Is(err, domain.ErrEmptyQueryText) {
		t.Fatalf("expected ErrEmptyQueryText, got %v", err)
	}
}

func TestRun_BatchLimit(t *testing.T) {
	svc := New(&mockOps{}, &mockSets{}, 1, 2)

	_, err := svc.Run(context.Background(), "c", []string{"a", "b", "c"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestTermSetName(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"alpha", "term-alpha"},
		{"Beta Gamma", "term-beta-gamma"},
		{"C++ / Go!", "term-c-go"},
		{"trailing  ", "term-trailing"},
	}
	for _, tt := range tests {
		if got := termSetName(tt.term); got != tt.want {
			t.Errorf("termSetName(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

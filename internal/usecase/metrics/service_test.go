package metrics

import (
	"context"
	"testing"

	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// --- Mocks ---

type mockSets struct {
	members []string
	err     error
}

func (m *mockSets) Members(_ context.Context, _, _ string) ([]string, error) {
	return m.members, m.err
}

type mockDocs struct {
	docs []document.Document
	err  error
}

func (m *mockDocs) DocumentsByID(_ context.Context, _ string, _ []string) ([]document.Document, error) {
	return m.docs, m.err
}

type mockStore struct {
	upserted     map[string]docset.Metrics
	queryMetrics map[string]docset.QueryMetrics
}

func newMockStore() *mockStore {
	return &mockStore{
		upserted:     make(map[string]docset.Metrics),
		queryMetrics: make(map[string]docset.QueryMetrics),
	}
}

func (m *mockStore) UpsertMetrics(_ context.Context, _, name string, mm docset.Metrics) error {
	m.upserted[name] = mm
	return nil
}

func (m *mockStore) SaveQueryMetrics(_ context.Context, _, execID string, mm docset.QueryMetrics) error {
	m.queryMetrics[execID] = mm
	return nil
}

func makeDoc(t *testing.T, id, content string) document.Document {
	t.Helper()
	d, err := document.New(id, "", content)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

// --- Tests ---

func TestComputeSetMetrics(t *testing.T) {
	docs := []document.Document{
		makeDoc(t, "d1", "alpha beta gamma"),
		makeDoc(t, "d2", "alpha alpha"),
	}
	store := newMockStore()
	svc := New(&mockSets{members: []string{"d1", "d2"}}, &mockDocs{docs: docs}, store)

	m, err := svc.ComputeSetMetrics(context.Background(), "c", "s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.DocumentCount != 2 {
		t.Errorf("expected 2 documents, got %d", m.DocumentCount)
	}
	if m.TotalWordCount != 5 {
		t.Errorf("expected total word count 5, got %d", m.TotalWordCount)
	}
	if m.AvgWordCount != 2.5 {
		t.Errorf("expected avg word count 2.5, got %g", m.AvgWordCount)
	}
	if m.TotalDistinctWordCount != 4 {
		t.Errorf("expected total distinct 4, got %d", m.TotalDistinctWordCount)
	}
	if _, ok := store.upserted["s"]; !ok {
		t.Error("expected metrics row upserted")
	}
}

func TestComputeSetMetrics_EmptySet(t *testing.T) {
	store := newMockStore()
	svc := New(&mockSets{}, &mockDocs{}, store)

	m, err := svc.ComputeSetMetrics(context.Background(), "c", "empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != (docset.Metrics{}) {
		t.Errorf("expected zero metrics for empty set, got %+v", m)
	}
	if _, ok := store.upserted["empty"]; !ok {
		t.Error("expected zero metrics row still upserted")
	}
}

func TestComputeSetMetrics_Idempotent(t *testing.T) {
	docs := []document.Document{makeDoc(t, "d1", "alpha")}
	store := newMockStore()
	svc := New(&mockSets{members: []string{"d1"}}, &mockDocs{docs: docs}, store)

	first, err := svc.ComputeSetMetrics(context.Background(), "c", "s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ComputeSetMetrics(context.Background(), "c", "s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("recomputation changed metrics: %+v vs %+v", first, second)
	}
}

func TestComputeQueryMetrics(t *testing.T) {
	// (alpha AND "beta gamma") OR NOT delta
	root := search.Compound{Op: search.Or, Children: []search.Node{
		search.Compound{Op: search.And, Children: []search.Node{
			search.Term{Text: "alpha"},
			search.Term{Text: "beta gamma", Phrase: true},
		}},
		search.Term{Text: "delta", Invert: true},
	}}

	svc := New(&mockSets{}, &mockDocs{}, newMockStore())
	m := svc.ComputeQueryMetrics(root, 12)

	if m.WordCount != 4 {
		t.Errorf("expected word count 4, got %d", m.WordCount)
	}
	if m.TermCount != 3 {
		t.Errorf("expected term count 3, got %d", m.TermCount)
	}
	// root(1) + outer op(1) + 2 slots + inner op(1) + 2 slots + 1 invert
	if m.Complexity != 8 {
		t.Errorf("expected complexity 8, got %d", m.Complexity)
	}
	if m.HitsPerWord != 3 {
		t.Errorf("expected hits per word 3, got %g", m.HitsPerWord)
	}
	if m.HitsPerTerm != 4 {
		t.Errorf("expected hits per term 4, got %g", m.HitsPerTerm)
	}
	if m.HitsPerQuery != 12 {
		t.Errorf("expected hits per query 12, got %d", m.HitsPerQuery)
	}
}

func TestComputeQueryMetrics_SingleTerm(t *testing.T) {
	svc := New(&mockSets{}, &mockDocs{}, newMockStore())
	m := svc.ComputeQueryMetrics(search.Term{Text: "alpha"}, 0)

	if m.Complexity != 1 {
		t.Errorf("expected complexity 1 for bare term, got %d", m.Complexity)
	}
	if m.HitsPerWord != 0 || m.HitsPerTerm != 0 {
		t.Errorf("expected zero ratios with zero hits, got %+v", m)
	}
}

package docset

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/corpusd/internal/domain"
	domset "github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
)

// --- Mock store ---

type mockStore struct {
	hashes    map[string]map[string]string
	sets      map[string][]string
	saddCalls [][]string
	saddFail  int // fail the nth SAdd call (1-based), 0 = never
	deleted   []string
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string][]string),
	}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for k, v := range fields {
		m.hashes[key][k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.hashes, key)
	delete(m.sets, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *mockStore) SAdd(_ context.Context, key string, members []string) error {
	m.saddCalls = append(m.saddCalls, members)
	if m.saddFail > 0 && len(m.saddCalls) == m.saddFail {
		return errors.New("connection reset")
	}
	m.sets[key] = append(m.sets[key], members...)
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	return m.sets[key], nil
}

func (m *mockStore) SCard(_ context.Context, key string) (int, error) {
	return len(m.sets[key]), nil
}

func makeSet(t *testing.T, name string) domset.DocumentSet {
	t.Helper()
	op := domset.NewOperation(domset.KindSnapshot, "", "")
	set, err := domset.New("id-"+name, name, "c", op, 1700000000000)
	if err != nil {
		t.Fatalf("docset.New: %v", err)
	}
	return set
}

func makeSpec(t *testing.T) exhaustive.Spec {
	t.Helper()
	spec, err := exhaustive.New("run-1", "c", "target",
		exhaustive.SelectMaxHits, exhaustive.EvalIncMax, 0, 1.0, 1700000000000)
	if err != nil {
		t.Fatalf("exhaustive.New: %v", err)
	}
	return spec
}

func makeMembers(n int) []domset.Member {
	members := make([]domset.Member, n)
	for i := range members {
		members[i] = domset.Member{DocID: "d" + strconv.Itoa(i), Rank: i + 1, Score: float64(n - i)}
	}
	return members
}

// --- Tests ---

func TestCreateSet_BatchesMembership(t *testing.T) {
	store := newMockStore()
	repo := New(store, 100)

	if err := repo.CreateSet(context.Background(), makeSet(t, "big"), makeMembers(250)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.saddCalls) != 3 {
		t.Fatalf("expected 3 membership batches, got %d", len(store.saddCalls))
	}
	if len(store.saddCalls[0]) != 100 || len(store.saddCalls[2]) != 50 {
		t.Errorf("unexpected batch sizes: %d, %d, %d",
			len(store.saddCalls[0]), len(store.saddCalls[1]), len(store.saddCalls[2]))
	}

	n, err := repo.MemberCount(context.Background(), "c", "big")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 250 {
		t.Errorf("expected 250 members, got %d", n)
	}
}

func TestCreateSet_RollsBackOnPartialWrite(t *testing.T) {
	store := newMockStore()
	store.saddFail = 2
	repo := New(store, 100)

	err := repo.CreateSet(context.Background(), makeSet(t, "partial"), makeMembers(250))
	if err == nil {
		t.Fatal("expected error from failed batch")
	}

	// Meta, members, and hits keys must all be deleted.
	if len(store.deleted) != 3 {
		t.Errorf("expected 3 rollback deletes, got %v", store.deleted)
	}
	if _, getErr := repo.GetSet(context.Background(), "c", "partial"); !errors.Is(getErr, domain.ErrSetNotFound) {
		t.Errorf("half-written set must not be observable, got %v", getErr)
	}
}

func TestCreateSet_Duplicate(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)

	if err := repo.CreateSet(context.Background(), makeSet(t, "dup"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := repo.CreateSet(context.Background(), makeSet(t, "dup"), nil)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateSet_RankScoreRows(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)

	members := []domset.Member{
		{DocID: "d1", Rank: 1, Score: 2.5},
		{DocID: "d2"}, // no rank, no hits row
	}
	if err := repo.CreateSet(context.Background(), makeSet(t, "hits"), members); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits := store.hashes[hitsKey("c", "hits")]
	if hits["d1"] != "1|2.5" {
		t.Errorf("expected rank|score row '1|2.5', got %q", hits["d1"])
	}
	if _, ok := hits["d2"]; ok {
		t.Error("member without rank must not get a hits row")
	}
}

func TestGetSet_RoundTrip(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)

	op := domset.NewOperation(domset.KindUnion, "A,B", ",")
	set, err := domset.New("id-1", "u", "c", op, 1700000000000)
	if err != nil {
		t.Fatalf("docset.New: %v", err)
	}
	if err := repo.CreateSet(context.Background(), set, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetSet(context.Background(), "c", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotOp := got.Operation()
	if got.ID() != "id-1" || gotOp.Kind() != domset.KindUnion || gotOp.Text() != "A,B" {
		t.Errorf("round trip lost fields: %q %q %q", got.ID(), gotOp.Kind(), gotOp.Text())
	}
	if got.CreatedAt() != 1700000000000 {
		t.Errorf("expected created_at preserved, got %d", got.CreatedAt())
	}
}

func TestGetSets_AccumulatesMissing(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)

	if err := repo.CreateSet(context.Background(), makeSet(t, "A"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sets, missing, err := repo.GetSets(context.Background(), "c", []string{"A", "X", "Y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 1 {
		t.Errorf("expected 1 resolved set, got %d", len(sets))
	}
	if len(missing) != 2 || missing[0] != "X" || missing[1] != "Y" {
		t.Errorf("expected missing [X Y], got %v", missing)
	}
}

func TestTermLibrary(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)
	ctx := context.Background()

	if err := repo.RegisterTermSet(ctx, "c", "alpha", "term-alpha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.RegisterTermSet(ctx, "c", "beta", "term-beta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	terms, err := repo.TermSets(ctx, "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(terms) != 2 || terms["alpha"] != "term-alpha" {
		t.Errorf("unexpected term library: %v", terms)
	}
}

func TestSpec_RoundTrip(t *testing.T) {
	store := newMockStore()
	repo := New(store, 0)
	ctx := context.Background()

	spec := makeSpec(t)
	spec.Complete("(alpha OR beta)", "result", []string{"alpha", "beta"}, 8, 10)
	if err := repo.SaveSpec(ctx, &spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetSpec(ctx, "c", spec.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Completed() || got.SearchText() != "(alpha OR beta)" {
		t.Errorf("round trip lost completion: %+v", got)
	}
	if sel := got.Selected(); len(sel) != 2 || sel[0] != "alpha" {
		t.Errorf("round trip lost selected terms: %v", sel)
	}
	if got.CoveredCount() != 8 || got.TargetSize() != 10 {
		t.Errorf("round trip lost coverage numbers: %d/%d", got.CoveredCount(), got.TargetSize())
	}
}

func TestGetSpec_NotFound(t *testing.T) {
	repo := New(newMockStore(), 0)

	_, err := repo.GetSpec(context.Background(), "c", "nope")
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

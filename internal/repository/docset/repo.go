// Package docset persists document sets, membership, metrics, the term
// library, query executions, and coverage runs.
package docset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/corpusd/internal/domain"
	domset "github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// store is the consumer interface for document sets (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members []string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int, error)
}

// Repo implements the document-set store surface.
type Repo struct {
	store     store
	batchSize int
}

// New creates a document-set repository. batchSize bounds membership rows
// per pipelined write; values <= 0 default to 100.
func New(s store, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Repo{store: s, batchSize: batchSize}
}

// CreateSet persists a set's metadata, membership, and per-hit rank/score
// rows. Membership is written in batches; a failed batch aborts and rolls
// the whole set back so a half-written set is never observable.
func (r *Repo) CreateSet(ctx context.Context, set domset.DocumentSet, members []domset.Member) error {
	metaKey := setKey(set.Corpus(), set.Name())

	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	if err := r.store.HSet(ctx, metaKey, setToHash(set)); err != nil {
		return fmt.Errorf("hset set %s: %w", set.Name(), err)
	}

	if err := r.writeMembership(ctx, set.Corpus(), set.Name(), members); err != nil {
		return errors.Join(err, r.rollbackSet(ctx, set.Corpus(), set.Name()))
	}

	return nil
}

func (r *Repo) writeMembership(ctx context.Context, corpusName, name string, members []domset.Member) error {
	membersKey := membersKey(corpusName, name)
	hitsKey := hitsKey(corpusName, name)

	for start := 0; start < len(members); start += r.batchSize {
		end := min(start+r.batchSize, len(members))
		batch := members[start:end]

		ids := make([]string, len(batch))
		hits := make(map[string]string, len(batch))
		for i, m := range batch {
			ids[i] = m.DocID
			if m.Rank > 0 {
				hits[m.DocID] = strconv.Itoa(m.Rank) + "|" + strconv.FormatFloat(m.Score, 'g', -1, 64)
			}
		}

		if err := r.store.SAdd(ctx, membersKey, ids); err != nil {
			return fmt.Errorf("write membership batch %d: %w", start/r.batchSize, err)
		}
		if len(hits) > 0 {
			if err := r.store.HSet(ctx, hitsKey, hits); err != nil {
				return fmt.Errorf("write hits batch %d: %w", start/r.batchSize, err)
			}
		}
	}
	return nil
}

func (r *Repo) rollbackSet(ctx context.Context, corpusName, name string) error {
	return errors.Join(
		r.store.Del(ctx, membersKey(corpusName, name)),
		r.store.Del(ctx, hitsKey(corpusName, name)),
		r.store.Del(ctx, setKey(corpusName, name)),
	)
}

// GetSet retrieves a document set by name.
func (r *Repo) GetSet(ctx context.Context, corpusName, name string) (domset.DocumentSet, error) {
	m, err := r.store.HGetAll(ctx, setKey(corpusName, name))
	if err != nil {
		return domset.DocumentSet{}, fmt.Errorf("hgetall set %s: %w", name, err)
	}
	if len(m) == 0 {
		return domset.DocumentSet{}, domain.ErrSetNotFound
	}
	return setFromHash(m), nil
}

// GetSets resolves multiple set names in one round-trip, accumulating every
// missing name instead of failing on the first.
func (r *Repo) GetSets(ctx context.Context, corpusName string, names []string) (
	[]domset.DocumentSet, []string, error,
) {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = setKey(corpusName, n)
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("hgetall multi sets: %w", err)
	}

	sets := make([]domset.DocumentSet, 0, len(names))
	var missing []string
	for i, m := range rows {
		if len(m) == 0 {
			missing = append(missing, names[i])
			continue
		}
		sets = append(sets, setFromHash(m))
	}
	return sets, missing, nil
}

// Members returns the member document IDs of a set.
func (r *Repo) Members(ctx context.Context, corpusName, name string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, membersKey(corpusName, name))
	if err != nil {
		return nil, fmt.Errorf("smembers set %s: %w", name, err)
	}
	return ids, nil
}

// MemberCount returns the membership cardinality of a set.
func (r *Repo) MemberCount(ctx context.Context, corpusName, name string) (int, error) {
	n, err := r.store.SCard(ctx, membersKey(corpusName, name))
	if err != nil {
		return 0, fmt.Errorf("scard set %s: %w", name, err)
	}
	return n, nil
}

// UpsertMetrics overwrites the stored metrics row for a set.
func (r *Repo) UpsertMetrics(ctx context.Context, corpusName, name string, m domset.Metrics) error {
	if err := r.store.HSet(ctx, metricsKey(corpusName, name), metricsToHash(m)); err != nil {
		return fmt.Errorf("upsert metrics %s: %w", name, err)
	}
	return nil
}

// GetMetrics returns the stored metrics row for a set.
func (r *Repo) GetMetrics(ctx context.Context, corpusName, name string) (domset.Metrics, error) {
	row, err := r.store.HGetAll(ctx, metricsKey(corpusName, name))
	if err != nil {
		return domset.Metrics{}, fmt.Errorf("hgetall metrics %s: %w", name, err)
	}
	if len(row) == 0 {
		return domset.Metrics{}, domain.ErrSetNotFound
	}
	return metricsFromHash(row), nil
}

// RegisterTermSet records a term -> set-name entry in the corpus's term library.
func (r *Repo) RegisterTermSet(ctx context.Context, corpusName, term, setName string) error {
	if err := r.store.HSet(ctx, termsKey(corpusName), map[string]string{term: setName}); err != nil {
		return fmt.Errorf("register term set %q: %w", term, err)
	}
	return nil
}

// TermSets returns the corpus's term library: term -> producing set name.
func (r *Repo) TermSets(ctx context.Context, corpusName string) (map[string]string, error) {
	m, err := r.store.HGetAll(ctx, termsKey(corpusName))
	if err != nil {
		return nil, fmt.Errorf("hgetall term library %s: %w", corpusName, err)
	}
	return m, nil
}

// SaveExecution records a query execution: root node JSON + resulting set.
func (r *Repo) SaveExecution(ctx context.Context, exec domset.QueryExecution) error {
	rootJSON, err := search.Marshal(exec.Root)
	if err != nil {
		return err
	}
	fields := map[string]string{
		"id":       exec.ID,
		"root":     string(rootJSON),
		"set_name": exec.SetName,
	}
	if err := r.store.HSet(ctx, execKey(exec.Corpus, exec.ID), fields); err != nil {
		return fmt.Errorf("save execution %s: %w", exec.ID, err)
	}
	return nil
}

// SaveQueryMetrics records the metrics row of a query execution.
func (r *Repo) SaveQueryMetrics(ctx context.Context, corpusName, execID string, m domset.QueryMetrics) error {
	if err := r.store.HSet(ctx, execMetricsKey(corpusName, execID), queryMetricsToHash(m)); err != nil {
		return fmt.Errorf("save query metrics %s: %w", execID, err)
	}
	return nil
}

// SaveSpec upserts a coverage run record. Called once when the run starts
// and once on completion with the result attached.
func (r *Repo) SaveSpec(ctx context.Context, spec *exhaustive.Spec) error {
	if err := r.store.HSet(ctx, specKey(spec.Corpus(), spec.ID()), specToHash(spec)); err != nil {
		return fmt.Errorf("save coverage spec %s: %w", spec.ID(), err)
	}
	return nil
}

// GetSpec retrieves a coverage run record.
func (r *Repo) GetSpec(ctx context.Context, corpusName, id string) (exhaustive.Spec, error) {
	row, err := r.store.HGetAll(ctx, specKey(corpusName, id))
	if err != nil {
		return exhaustive.Spec{}, fmt.Errorf("hgetall coverage spec %s: %w", id, err)
	}
	if len(row) == 0 {
		return exhaustive.Spec{}, domain.ErrRunNotFound
	}
	return specFromHash(row)
}

// Redis key patterns: corpusd:{corpus}:set:{name}[,:members,:hits,:metrics],
// corpusd:{corpus}:terms, corpusd:{corpus}:query:{id}[:metrics],
// corpusd:{corpus}:exhaustive:{id}

func setKey(corpusName, name string) string {
	return fmt.Sprintf("%s%s:set:%s", domain.KeyPrefix, corpusName, name)
}

func membersKey(corpusName, name string) string {
	return setKey(corpusName, name) + ":members"
}

func hitsKey(corpusName, name string) string {
	return setKey(corpusName, name) + ":hits"
}

func metricsKey(corpusName, name string) string {
	return setKey(corpusName, name) + ":metrics"
}

func termsKey(corpusName string) string {
	return fmt.Sprintf("%s%s:terms", domain.KeyPrefix, corpusName)
}

func execKey(corpusName, id string) string {
	return fmt.Sprintf("%s%s:query:%s", domain.KeyPrefix, corpusName, id)
}

func execMetricsKey(corpusName, id string) string {
	return execKey(corpusName, id) + ":metrics"
}

func specKey(corpusName, id string) string {
	return fmt.Sprintf("%s%s:exhaustive:%s", domain.KeyPrefix, corpusName, id)
}

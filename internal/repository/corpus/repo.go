// Package corpus persists corpora and their documents.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/corpusd/internal/db"
	"github.com/kailas-cloud/corpusd/internal/domain"
	domcorpus "github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
	"github.com/kailas-cloud/corpusd/internal/query"
)

// writeBatchSize bounds the number of rows per pipelined write.
const writeBatchSize = 100

// store is the consumer interface for corpora and documents (ISP).
//
//nolint:interfacebloat // corpus repo needs hash + set + index management operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members []string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements the corpus store surface.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a corpus: HSET metadata then FT.CREATE its index.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, name string) (domcorpus.Corpus, error) {
	col, err := domcorpus.New(name, indexName(name), time.Now().UnixMilli())
	if err != nil {
		return domcorpus.Corpus{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	key := metaKey(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return domcorpus.Corpus{}, fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domcorpus.Corpus{}, domain.ErrAlreadyExists
	}

	if err := r.store.HSet(ctx, key, corpusToHash(col)); err != nil {
		return domcorpus.Corpus{}, fmt.Errorf("hset corpus %s: %w", name, err)
	}

	def := &db.IndexDefinition{
		Name:     col.IndexName(),
		Prefixes: []string{docPrefix(name)},
		Fields: []db.IndexField{
			{Name: query.ContentField, Type: db.IndexFieldText},
			{Name: "word_count", Type: db.IndexFieldNumeric},
			{Name: "doc_length", Type: db.IndexFieldNumeric},
			{Name: "distinct_word_count", Type: db.IndexFieldNumeric},
			{Name: "avg_word_length", Type: db.IndexFieldNumeric},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		cleanupErr := r.store.Del(ctx, key)
		return domcorpus.Corpus{}, errors.Join(err, cleanupErr)
	}

	return col, nil
}

// Get retrieves a corpus by name.
func (r *Repo) Get(ctx context.Context, name string) (domcorpus.Corpus, error) {
	m, err := r.store.HGetAll(ctx, metaKey(name))
	if err != nil {
		return domcorpus.Corpus{}, fmt.Errorf("hgetall corpus %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcorpus.Corpus{}, domain.ErrCorpusNotFound
	}
	return corpusFromHash(m)
}

// UpsertDocuments writes document rows in pipelined batches and registers
// their IDs. The search index picks the hashes up by key prefix.
func (r *Repo) UpsertDocuments(ctx context.Context, corpusName string, docs []document.Document) error {
	for start := 0; start < len(docs); start += writeBatchSize {
		end := min(start+writeBatchSize, len(docs))
		batch := docs[start:end]

		items := make([]db.HashSetItem, len(batch))
		ids := make([]string, len(batch))
		for i := range batch {
			items[i] = db.HashSetItem{
				Key:    docKey(corpusName, batch[i].ID()),
				Fields: docToHash(&batch[i]),
			}
			ids[i] = batch[i].ID()
		}

		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write documents batch %d: %w", start/writeBatchSize, err)
		}
		if err := r.store.SAdd(ctx, docsKey(corpusName), ids); err != nil {
			return fmt.Errorf("register documents batch %d: %w", start/writeBatchSize, err)
		}
	}
	return nil
}

// ListDocuments returns every document of a corpus with its statistic fields.
func (r *Repo) ListDocuments(ctx context.Context, corpusName string) ([]document.Document, error) {
	ids, err := r.store.SMembers(ctx, docsKey(corpusName))
	if err != nil {
		return nil, fmt.Errorf("list document ids %s: %w", corpusName, err)
	}
	return r.DocumentsByID(ctx, corpusName, ids)
}

// DocumentCount returns the number of documents in a corpus.
func (r *Repo) DocumentCount(ctx context.Context, corpusName string) (int, error) {
	n, err := r.store.SCard(ctx, docsKey(corpusName))
	if err != nil {
		return 0, fmt.Errorf("count documents %s: %w", corpusName, err)
	}
	return n, nil
}

// DocumentsByID resolves document IDs to documents in pipelined batches.
// IDs with no stored document are silently excluded: a backend hit outside
// the corpus is expected, not an error.
func (r *Repo) DocumentsByID(ctx context.Context, corpusName string, ids []string) ([]document.Document, error) {
	docs := make([]document.Document, 0, len(ids))

	for start := 0; start < len(ids); start += writeBatchSize {
		end := min(start+writeBatchSize, len(ids))
		batch := ids[start:end]

		keys := make([]string, len(batch))
		for i, id := range batch {
			keys[i] = docKey(corpusName, id)
		}

		rows, err := r.store.HGetAllMulti(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("fetch documents %s: %w", corpusName, err)
		}
		for i, m := range rows {
			if len(m) == 0 {
				continue
			}
			docs = append(docs, docFromHash(batch[i], keys[i], m))
		}
	}

	return docs, nil
}

// Redis key patterns: corpusd:corpus:{name}, corpusd:{name}:idx,
// corpusd:{name}:doc:{id}, corpusd:{name}:docs

func metaKey(name string) string {
	return fmt.Sprintf("%scorpus:%s", domain.KeyPrefix, name)
}

func indexName(name string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, name)
}

func docPrefix(name string) string {
	return fmt.Sprintf("%s%s:doc:", domain.KeyPrefix, name)
}

func docKey(corpusName, id string) string {
	return docPrefix(corpusName) + id
}

func docsKey(name string) string {
	return fmt.Sprintf("%s%s:docs", domain.KeyPrefix, name)
}

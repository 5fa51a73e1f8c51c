package corpus

import (
	"fmt"
	"strconv"

	domcorpus "github.com/kailas-cloud/corpusd/internal/domain/corpus"
	"github.com/kailas-cloud/corpusd/internal/domain/document"
	"github.com/kailas-cloud/corpusd/internal/query"
)

// corpusToHash converts a domain Corpus to a map for HSET.
func corpusToHash(c domcorpus.Corpus) map[string]string {
	return map[string]string{
		"name":       c.Name(),
		"index_name": c.IndexName(),
		"created_at": strconv.FormatInt(c.CreatedAt(), 10),
	}
}

// corpusFromHash hydrates a domain Corpus from an HGETALL result map.
func corpusFromHash(m map[string]string) (domcorpus.Corpus, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domcorpus.Corpus{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domcorpus.Reconstruct(m["name"], m["index_name"], createdAt), nil
}

// docToHash converts a domain Document to a map for HSET. The content field
// is what the FT index tokenizes; the stat fields are precomputed at
// ingestion and never recomputed.
func docToHash(d *document.Document) map[string]string {
	stats := d.Stats()
	return map[string]string{
		"id":                  d.ID(),
		query.ContentField:    d.Content(),
		"word_count":          strconv.Itoa(stats.WordCount),
		"doc_length":          strconv.Itoa(stats.DocLength),
		"distinct_word_count": strconv.Itoa(stats.DistinctWordCount),
		"avg_word_length":     strconv.FormatFloat(stats.AvgWordLength, 'g', -1, 64),
	}
}

// docFromHash hydrates a domain Document from an HGETALL result map.
// The full backend key doubles as the external index identifier.
func docFromHash(id, externalID string, m map[string]string) document.Document {
	stats := document.Stats{}
	if v, err := strconv.Atoi(m["word_count"]); err == nil {
		stats.WordCount = v
	}
	if v, err := strconv.Atoi(m["doc_length"]); err == nil {
		stats.DocLength = v
	}
	if v, err := strconv.Atoi(m["distinct_word_count"]); err == nil {
		stats.DistinctWordCount = v
	}
	if v, err := strconv.ParseFloat(m["avg_word_length"], 64); err == nil {
		stats.AvgWordLength = v
	}
	return document.Reconstruct(id, externalID, m[query.ContentField], stats)
}

// Package corpus defines the corpus aggregate.
package corpus

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Corpus is a named collection of documents indexed under one backend index.
// Effectively immutable after creation.
type Corpus struct {
	name      string
	indexName string
	createdAt int64 // unix millis
}

// New validates and creates a Corpus.
// Name: ^[a-zA-Z0-9_-]+$, 1-128 chars.
func New(name, indexName string, createdAt int64) (Corpus, error) {
	if name == "" {
		return Corpus{}, fmt.Errorf("corpus name is required")
	}
	if len(name) > 128 {
		return Corpus{}, fmt.Errorf("corpus name too long (max 128)")
	}
	if !nameRegex.MatchString(name) {
		return Corpus{}, fmt.Errorf("corpus name must be alphanumeric with underscores and hyphens")
	}
	if indexName == "" {
		return Corpus{}, fmt.Errorf("index name is required")
	}
	return Corpus{name: name, indexName: indexName, createdAt: createdAt}, nil
}

// Reconstruct creates a Corpus without validation (storage hydration).
func Reconstruct(name, indexName string, createdAt int64) Corpus {
	return Corpus{name: name, indexName: indexName, createdAt: createdAt}
}

// Name returns the corpus name.
func (c *Corpus) Name() string { return c.name }

// IndexName returns the backend index name.
func (c *Corpus) IndexName() string { return c.indexName }

// CreatedAt returns the creation time in unix millis.
func (c *Corpus) CreatedAt() int64 { return c.createdAt }

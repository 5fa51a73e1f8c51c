// Package document defines the document aggregate and its text statistics.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 1 << 20 // 1MB

// Stats holds the precomputed text statistics of a document. They are
// computed once at ingestion and never change afterwards.
type Stats struct {
	WordCount         int
	DocLength         int
	DistinctWordCount int
	AvgWordLength     float64
}

// Document is one unit of text within a corpus (immutable value object).
type Document struct {
	id         string
	externalID string
	content    string
	stats      Stats
}

// New validates and creates a Document, computing its text statistics.
// ID: non-empty, max 256 chars. Content: non-empty, max 1MB.
func New(id, externalID, content string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	return Document{
		id:         id,
		externalID: externalID,
		content:    content,
		stats:      ComputeStats(content),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, externalID, content string, stats Stats) Document {
	return Document{id: id, externalID: externalID, content: content, stats: stats}
}

// ID returns the corpus-local document identifier.
func (d *Document) ID() string { return d.id }

// ExternalID returns the identifier the search backend knows this document by.
func (d *Document) ExternalID() string { return d.externalID }

// Content returns the document text.
func (d *Document) Content() string { return d.content }

// Stats returns the precomputed text statistics.
func (d *Document) Stats() Stats { return d.stats }

// ComputeStats derives text statistics from document content.
// Words are whitespace-separated tokens; distinct counting is
// case-insensitive; lengths are in runes.
func ComputeStats(content string) Stats {
	words := strings.Fields(content)
	if len(words) == 0 {
		return Stats{DocLength: utf8.RuneCountInString(content)}
	}

	distinct := make(map[string]struct{}, len(words))
	totalWordLen := 0
	for _, w := range words {
		distinct[strings.ToLower(w)] = struct{}{}
		totalWordLen += utf8.RuneCountInString(w)
	}

	return Stats{
		WordCount:         len(words),
		DocLength:         utf8.RuneCountInString(content),
		DistinctWordCount: len(distinct),
		AvgWordLength:     float64(totalWordLen) / float64(len(words)),
	}
}

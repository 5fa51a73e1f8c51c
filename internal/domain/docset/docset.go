// Package docset defines the document-set aggregate and its provenance.
package docset

import (
	"fmt"
	"strings"
)

// Kind identifies the operation that produces a document set.
type Kind string

// Producing operation kinds.
const (
	KindSnapshot      Kind = "SNAPSHOT"
	KindUnion         Kind = "UNION"
	KindIntersection  Kind = "INTERSECTION"
	KindKeywordSearch Kind = "KEYWORD_SEARCH"
	KindJSONSearch    Kind = "JSON_SEARCH"
	KindTermTest      Kind = "TERM_TEST"
	KindExhaustive    Kind = "EXHAUSTIVE"
)

// ParseKind normalizes and validates an operation kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case KindSnapshot, KindUnion, KindIntersection,
		KindKeywordSearch, KindJSONSearch, KindTermTest, KindExhaustive:
		return k, nil
	default:
		return "", fmt.Errorf("unknown set operation kind %q", s)
	}
}

// IsSearch reports whether the kind executes a backend query.
func (k Kind) IsSearch() bool {
	switch k {
	case KindKeywordSearch, KindJSONSearch, KindTermTest, KindExhaustive:
		return true
	default:
		return false
	}
}

// Operation is the recorded recipe that produced a document set.
type Operation struct {
	kind      Kind
	text      string // set-name list, query text, or raw JSON query
	delimiter string
}

// NewOperation creates an Operation.
func NewOperation(kind Kind, text, delimiter string) Operation {
	return Operation{kind: kind, text: text, delimiter: delimiter}
}

// Kind returns the operation kind.
func (o *Operation) Kind() Kind { return o.kind }

// Text returns the free-form operation text.
func (o *Operation) Text() string { return o.text }

// Delimiter returns the operand delimiter.
func (o *Operation) Delimiter() string { return o.delimiter }

// DocumentSet is an immutable, named subset of a corpus's documents.
// Membership never changes after creation; derive a new set instead.
type DocumentSet struct {
	id        string
	name      string
	corpus    string
	operation Operation
	createdAt int64 // unix millis
}

// New validates and creates a DocumentSet.
func New(id, name, corpus string, op Operation, createdAt int64) (DocumentSet, error) {
	if id == "" {
		return DocumentSet{}, fmt.Errorf("set ID is required")
	}
	if name == "" {
		return DocumentSet{}, fmt.Errorf("set name is required")
	}
	if corpus == "" {
		return DocumentSet{}, fmt.Errorf("corpus name is required")
	}
	return DocumentSet{id: id, name: name, corpus: corpus, operation: op, createdAt: createdAt}, nil
}

// Reconstruct creates a DocumentSet without validation (storage hydration).
func Reconstruct(id, name, corpus string, op Operation, createdAt int64) DocumentSet {
	return DocumentSet{id: id, name: name, corpus: corpus, operation: op, createdAt: createdAt}
}

// ID returns the set identifier.
func (s *DocumentSet) ID() string { return s.id }

// Name returns the set name.
func (s *DocumentSet) Name() string { return s.name }

// Corpus returns the owning corpus name.
func (s *DocumentSet) Corpus() string { return s.corpus }

// Operation returns the producing operation.
func (s *DocumentSet) Operation() Operation { return s.operation }

// CreatedAt returns the creation time in unix millis.
func (s *DocumentSet) CreatedAt() int64 { return s.createdAt }

// Member is one document's membership row in a set. Rank and Score are only
// populated for search-derived sets (rank is 1-based backend order).
type Member struct {
	DocID string
	Rank  int
	Score float64
}

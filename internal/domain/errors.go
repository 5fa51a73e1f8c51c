// Package domain holds the shared error taxonomy and key conventions.
package domain

import (
	"errors"
	"strings"
)

var (
	// ErrCorpusNotFound signals a missing corpus.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrSetNotFound signals a missing document set.
	ErrSetNotFound = errors.New("document set not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument signals a request that fails domain validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidQuery signals malformed query JSON or an unsupported operator.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmptyQueryText signals a search operation without query text.
	ErrEmptyQueryText = errors.New("empty query text")
	// ErrNoTermLibrary signals a coverage run on a corpus with no term-test sets.
	ErrNoTermLibrary = errors.New("no term library for corpus")
	// ErrRunNotFound signals a missing coverage run record.
	ErrRunNotFound = errors.New("coverage run not found")
	// ErrBackendUnavailable signals the search backend is unreachable or
	// returned a transport-level error.
	ErrBackendUnavailable = errors.New("search backend unavailable")
)

// SetsNotFoundError wraps ErrSetNotFound with every missing set name, so the
// caller gets the complete picture in one error instead of failing on the
// first miss.
type SetsNotFoundError struct {
	Missing []string
}

func (e *SetsNotFoundError) Error() string {
	return "document sets not found: " + strings.Join(e.Missing, ", ")
}

func (e *SetsNotFoundError) Unwrap() error { return ErrSetNotFound }

// NewSetsNotFound creates a SetsNotFoundError.
func NewSetsNotFound(missing []string) error {
	return &SetsNotFoundError{Missing: missing}
}

// Package exhaustive defines the coverage-run specification aggregate.
package exhaustive

import (
	"fmt"
	"strings"
)

// SelectionMode orders the candidate term list once, up front. The ordering
// only affects which candidates a truncated pool (K > 0) considers each
// round; it does not itself pick the winner.
type SelectionMode string

// Selection modes.
const (
	SelectMinHits SelectionMode = "MINHITS"
	SelectMaxHits SelectionMode = "MAXHITS"
	SelectRandom  SelectionMode = "RANDOM"
)

// ParseSelectionMode normalizes and validates a selection mode string.
func ParseSelectionMode(s string) (SelectionMode, error) {
	m := SelectionMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case SelectMinHits, SelectMaxHits, SelectRandom:
		return m, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// EvalMode picks the winning candidate each round by marginal gain.
type EvalMode string

// Eval modes.
const (
	EvalIncMax EvalMode = "INCMAX"
	EvalIncMin EvalMode = "INCMIN"
)

// ParseEvalMode normalizes and validates an eval mode string.
func ParseEvalMode(s string) (EvalMode, error) {
	m := EvalMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case EvalIncMax, EvalIncMin:
		return m, nil
	default:
		return "", fmt.Errorf("unknown eval mode %q", s)
	}
}

// Spec is the configuration and result of one exhaustive coverage run.
// Created at the start of a run, mutated once on completion.
type Spec struct {
	id        string
	corpus    string
	targetSet string
	selection SelectionMode
	eval      EvalMode
	termCount int     // candidate pool size per round, 0 = unlimited
	threshold float64 // coverage fraction in (0,1]
	createdAt int64   // unix millis

	// result, attached on completion
	completed    bool
	searchText   string
	resultSet    string
	selected     []string
	coveredCount int
	targetSize   int
}

// New validates and creates a Spec.
func New(
	id, corpus, targetSet string,
	selection SelectionMode, eval EvalMode,
	termCount int, threshold float64, createdAt int64,
) (Spec, error) {
	if id == "" {
		return Spec{}, fmt.Errorf("spec ID is required")
	}
	if corpus == "" {
		return Spec{}, fmt.Errorf("corpus name is required")
	}
	if targetSet == "" {
		return Spec{}, fmt.Errorf("target set name is required")
	}
	if termCount < 0 {
		return Spec{}, fmt.Errorf("eval term count must be >= 0, got %d", termCount)
	}
	if threshold <= 0 || threshold > 1 {
		return Spec{}, fmt.Errorf("threshold must be in (0,1], got %g", threshold)
	}
	return Spec{
		id:        id,
		corpus:    corpus,
		targetSet: targetSet,
		selection: selection,
		eval:      eval,
		termCount: termCount,
		threshold: threshold,
		createdAt: createdAt,
	}, nil
}

// Reconstruct creates a Spec without validation (storage hydration).
func Reconstruct(
	id, corpus, targetSet string,
	selection SelectionMode, eval EvalMode,
	termCount int, threshold float64, createdAt int64,
	completed bool, searchText, resultSet string,
	selected []string, coveredCount, targetSize int,
) Spec {
	return Spec{
		id: id, corpus: corpus, targetSet: targetSet,
		selection: selection, eval: eval,
		termCount: termCount, threshold: threshold, createdAt: createdAt,
		completed: completed, searchText: searchText, resultSet: resultSet,
		selected: selected, coveredCount: coveredCount, targetSize: targetSize,
	}
}

// Complete attaches the run result. An empty selected list records a no-op
// completion: no query was compiled and no result set exists.
func (s *Spec) Complete(searchText, resultSet string, selected []string, coveredCount, targetSize int) {
	s.completed = true
	s.searchText = searchText
	s.resultSet = resultSet
	s.selected = selected
	s.coveredCount = coveredCount
	s.targetSize = targetSize
}

// ID returns the spec identifier.
func (s *Spec) ID() string { return s.id }

// Corpus returns the corpus name.
func (s *Spec) Corpus() string { return s.corpus }

// TargetSet returns the target document set name.
func (s *Spec) TargetSet() string { return s.targetSet }

// Selection returns the candidate ordering mode.
func (s *Spec) Selection() SelectionMode { return s.selection }

// Eval returns the winner picking mode.
func (s *Spec) Eval() EvalMode { return s.eval }

// TermCount returns the per-round candidate pool size (0 = unlimited).
func (s *Spec) TermCount() int { return s.termCount }

// Threshold returns the coverage fraction at which the run stops.
func (s *Spec) Threshold() float64 { return s.threshold }

// CreatedAt returns the creation time in unix millis.
func (s *Spec) CreatedAt() int64 { return s.createdAt }

// Completed reports whether the run has finished.
func (s *Spec) Completed() bool { return s.completed }

// SearchText returns the rendered compound query text (empty for a no-op run).
func (s *Spec) SearchText() string { return s.searchText }

// ResultSet returns the materialized set name (empty for a no-op run).
func (s *Spec) ResultSet() string { return s.resultSet }

// Selected returns the accepted terms in selection order.
func (s *Spec) Selected() []string { return s.selected }

// CoveredCount returns how many target documents the selection covered.
func (s *Spec) CoveredCount() int { return s.coveredCount }

// TargetSize returns the target set size at run time.
func (s *Spec) TargetSize() int { return s.targetSize }

// Package termtest runs batches of single-term searches, populating the
// corpus's term library for later coverage runs.
package termtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/corpusd/internal/domain"
	"github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/logger"
	"github.com/kailas-cloud/corpusd/internal/usecase/setops"
)

const (
	// Sequential by default so per-term log ordering is deterministic.
	// Config raises this to trade ordering for throughput.
	defaultConcurrency = 1
	defaultMaxTerms    = 1000
)

// OperationRunner executes one set operation (ISP).
type OperationRunner interface {
	Run(ctx context.Context, corpusName string, p setops.Params) (docset.DocumentSet, error)
}

// SetReader counts set members (ISP).
type SetReader interface {
	MemberCount(ctx context.Context, corpusName, name string) (int, error)
}

// TermResult is the outcome of one term's test.
type TermResult struct {
	Term    string
	SetName string
	Hits    int
	Err     string // empty on success
}

// Report summarizes a batch run. A failed term never aborts the batch.
type Report struct {
	Requested int
	Succeeded int
	Results   []TermResult
}

// Service runs term-test batches on a bounded worker pool.
type Service struct {
	ops         OperationRunner
	sets        SetReader
	concurrency int
	maxTerms    int
}

// New creates a term-test service. concurrency falls back to 1 and maxTerms
// to 1000 when <= 0.
func New(ops OperationRunner, sets SetReader, concurrency, maxTerms int) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if maxTerms <= 0 {
		maxTerms = defaultMaxTerms
	}
	return &Service{ops: ops, sets: sets, concurrency: concurrency, maxTerms: maxTerms}
}

// Run tests every term concurrently, each producing its own document set and
// term library entry. Per-term failures are collected in the report instead
// of failing the batch.
func (s *Service) Run(ctx context.Context, corpusName string, terms []string) (Report, error) {
	terms = dedupeTerms(terms)
	if len(terms) == 0 {
		return Report{}, domain.ErrEmptyQueryText
	}
	if len(terms) > s.maxTerms {
		return Report{}, fmt.Errorf("%w: %d terms exceeds batch limit %d",
			domain.ErrInvalidArgument, len(terms), s.maxTerms)
	}

	pool, err := ants.NewPool(s.concurrency)
	if err != nil {
		return Report{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	log := logger.FromContext(ctx)
	results := make([]TermResult, len(terms))

	var wg sync.WaitGroup
	for i, term := range terms {
		i, term := i, term
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.testTerm(ctx, corpusName, term)
			if results[i].Err != "" {
				log.Warn("term test failed",
					zap.String("corpus", corpusName),
					zap.String("term", term),
					zap.String("error", results[i].Err),
				)
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = TermResult{Term: term, Err: submitErr.Error()}
		}
	}
	wg.Wait()

	report := Report{Requested: len(terms), Results: results}
	for _, r := range results {
		if r.Err == "" {
			report.Succeeded++
		}
	}
	return report, nil
}

func (s *Service) testTerm(ctx context.Context, corpusName, term string) TermResult {
	name := termSetName(term)
	set, err := s.ops.Run(ctx, corpusName, setops.Params{
		Kind:        docset.KindTermTest,
		Name:        name,
		OperandText: term,
	})
	if err != nil {
		return TermResult{Term: term, SetName: name, Err: err.Error()}
	}

	hits, err := s.sets.MemberCount(ctx, corpusName, set.Name())
	if err != nil {
		return TermResult{Term: term, SetName: set.Name(), Err: err.Error()}
	}
	return TermResult{Term: term, SetName: set.Name(), Hits: hits}
}

// dedupeTerms trims and deduplicates, keeping first-seen order.
func dedupeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// termSetName derives a stable set name from a term: lowercase with runs of
// non-alphanumerics collapsed to single dashes.
func termSetName(term string) string {
	var b strings.Builder
	b.WriteString("term-")
	lastDash := false
	for _, r := range strings.ToLower(term) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

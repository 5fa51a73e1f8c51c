// Package coverage builds greedy term selections that cover a target
// document set.
package coverage

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
)

// TermHits is one candidate term with its full hit set in the corpus.
type TermHits struct {
	Term string
	Docs []string
}

// Outcome is the result of one greedy selection.
type Outcome struct {
	Selected        []string // accepted terms, in selection order
	CoveredInTarget int      // distinct target documents the selection covers
	TargetSize      int      // deduplicated target set size
	Rounds          int
}

type candidate struct {
	term string
	docs map[string]struct{}
}

// Generate greedily selects terms until the selection covers at least
// threshold * |target| target documents, the candidates run out, or no
// remaining candidate adds coverage (plateau). Selection mode orders the
// candidate list once up front; with poolSize > 0 only the first poolSize
// unselected candidates compete each round. Eval mode picks the round winner
// by marginal gain over the target; a zero-gain candidate never wins. The
// context is checked once per round so a long run stays cancelable.
func Generate(
	ctx context.Context,
	target []string,
	library []TermHits,
	selection exhaustive.SelectionMode,
	eval exhaustive.EvalMode,
	poolSize int,
	threshold float64,
) (Outcome, error) {
	targetSet := make(map[string]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}

	candidates := make([]*candidate, 0, len(library))
	for _, th := range library {
		docs := make(map[string]struct{}, len(th.Docs))
		for _, id := range th.Docs {
			docs[id] = struct{}{}
		}
		candidates = append(candidates, &candidate{term: th.Term, docs: docs})
	}
	orderCandidates(candidates, selection)

	out := Outcome{TargetSize: len(targetSet)}
	covered := make(map[string]struct{})
	want := threshold * float64(len(targetSet))

	for float64(len(covered)) < want && len(candidates) > 0 {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		pool := candidates
		if poolSize > 0 && len(pool) > poolSize {
			pool = pool[:poolSize]
		}

		winner := pickWinner(pool, targetSet, covered, eval)
		if winner < 0 {
			break // plateau: nothing left adds coverage
		}

		c := pool[winner]
		for id := range c.docs {
			if _, ok := targetSet[id]; ok {
				covered[id] = struct{}{}
			}
		}
		out.Selected = append(out.Selected, c.term)
		out.Rounds++
		candidates = append(candidates[:winner], candidates[winner+1:]...)
	}

	out.CoveredInTarget = len(covered)
	return out, nil
}

// pickWinner returns the index of the round winner in pool, or -1 when no
// candidate has strictly positive marginal gain. Ties keep the earliest
// candidate in pool order for both eval modes.
func pickWinner(pool []*candidate, target, covered map[string]struct{}, eval exhaustive.EvalMode) int {
	best := -1
	bestGain := 0
	for i, c := range pool {
		gain := marginalGain(c, target, covered)
		if gain <= 0 {
			continue
		}
		switch eval {
		case exhaustive.EvalIncMin:
			if best < 0 || gain < bestGain {
				best, bestGain = i, gain
			}
		default: // EvalIncMax
			if gain > bestGain {
				best, bestGain = i, gain
			}
		}
	}
	return best
}

// marginalGain counts the candidate's hits that are in the target and not yet
// covered.
func marginalGain(c *candidate, target, covered map[string]struct{}) int {
	gain := 0
	for id := range c.docs {
		if _, ok := target[id]; !ok {
			continue
		}
		if _, ok := covered[id]; ok {
			continue
		}
		gain++
	}
	return gain
}

// orderCandidates sorts the candidate list once according to the selection
// mode. Sorting is stable so equal hit counts keep their input order.
func orderCandidates(candidates []*candidate, selection exhaustive.SelectionMode) {
	switch selection {
	case exhaustive.SelectMinHits:
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].docs) < len(candidates[j].docs)
		})
	case exhaustive.SelectMaxHits:
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].docs) > len(candidates[j].docs)
		})
	case exhaustive.SelectRandom:
		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}
}

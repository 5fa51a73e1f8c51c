package metrics

import (
	"strings"

	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// treeWordCount counts whitespace-separated tokens across all leaf terms.
func treeWordCount(n search.Node) int {
	switch v := n.(type) {
	case search.Term:
		return len(strings.Fields(v.Text))
	case search.Compound:
		total := 0
		for _, c := range v.Children {
			total += treeWordCount(c)
		}
		return total
	default:
		return 0
	}
}

// treeTermCount counts leaf nodes.
func treeTermCount(n search.Node) int {
	switch v := n.(type) {
	case search.Term:
		return 1
	case search.Compound:
		total := 0
		for _, c := range v.Children {
			total += treeTermCount(c)
		}
		return total
	default:
		return 0
	}
}

// treeComplexity scores a tree: one for the root, one per compound operator,
// one per compound child slot, and one per inverted node.
func treeComplexity(root search.Node) int {
	return 1 + nodeComplexity(root)
}

func nodeComplexity(n search.Node) int {
	switch v := n.(type) {
	case search.Term:
		if v.Invert {
			return 1
		}
		return 0
	case search.Compound:
		c := 1 + len(v.Children)
		if v.Invert {
			c++
		}
		for _, child := range v.Children {
			c += nodeComplexity(child)
		}
		return c
	default:
		return 0
	}
}

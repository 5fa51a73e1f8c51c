package corpusd

import (
	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// Query is a fluent builder for structured search expressions.
type Query struct {
	node search.Node
}

// Term matches documents containing all whitespace-separated tokens.
func Term(text string) *Query {
	return &Query{node: search.Term{Text: text}}
}

// Phrase matches documents containing the exact phrase.
func Phrase(text string) *Query {
	return &Query{node: search.Term{Text: text, Phrase: true}}
}

// And combines sub-queries; every one must match.
func And(qs ...*Query) *Query {
	return compound(search.And, qs)
}

// Or combines sub-queries; at least one must match.
func Or(qs ...*Query) *Query {
	return compound(search.Or, qs)
}

func compound(op search.Operator, qs []*Query) *Query {
	children := make([]search.Node, len(qs))
	for i, q := range qs {
		children[i] = q.node
	}
	return &Query{node: search.Compound{Op: op, Children: children}}
}

// Not negates the query. Returns a new Query.
func (q *Query) Not() *Query {
	switch n := q.node.(type) {
	case search.Term:
		n.Invert = !n.Invert
		return &Query{node: n}
	case search.Compound:
		n.Invert = !n.Invert
		return &Query{node: n}
	default:
		return q
	}
}

// JSON renders the query as the wire format the JSON_SEARCH operation takes.
func (q *Query) JSON() (string, error) {
	data, err := search.Marshal(q.node)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Package search defines the recursive search-expression tree.
package search

import (
	"encoding/json"
	"fmt"
)

// Operator is a boolean combination operator.
type Operator string

// Supported operators.
const (
	And Operator = "AND"
	Or  Operator = "OR"
)

// Node is a closed tagged union: every node is exactly one of Term or
// Compound, never both. Invert applies uniformly regardless of node kind.
type Node interface {
	isNode()
}

// Term is a leaf node matching a single term or exact phrase.
type Term struct {
	Text   string `json:"term"`
	Phrase bool   `json:"phrase,omitempty"`
	Invert bool   `json:"invert,omitempty"`
}

func (Term) isNode() {}

// Compound is a boolean combination of child expressions, in order.
type Compound struct {
	Op       Operator `json:"operator"`
	Children []Node   `json:"children"`
	Invert   bool     `json:"invert,omitempty"`
}

func (Compound) isNode() {}

// Marshal renders a node tree as JSON.
func Marshal(n Node) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal search node: %w", err)
	}
	return data, nil
}

// rawNode is the intermediate decode form for Parse.
type rawNode struct {
	Term     *string           `json:"term"`
	Phrase   bool              `json:"phrase"`
	Operator *string           `json:"operator"`
	Children []json.RawMessage `json:"children"`
	Invert   bool              `json:"invert"`
}

// Parse decodes a JSON search expression into a node tree.
// A node object carries either "term" (with optional "phrase") or
// "operator" (AND|OR, with "children"); both at once is invalid.
func Parse(data []byte) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse search node: %w", err)
	}

	switch {
	case raw.Term != nil && raw.Operator != nil:
		return nil, fmt.Errorf("node carries both term and operator")

	case raw.Term != nil:
		if *raw.Term == "" {
			return nil, fmt.Errorf("term text is required")
		}
		return Term{Text: *raw.Term, Phrase: raw.Phrase, Invert: raw.Invert}, nil

	case raw.Operator != nil:
		op := Operator(*raw.Operator)
		if op != And && op != Or {
			return nil, fmt.Errorf("unsupported operator %q", *raw.Operator)
		}
		if len(raw.Children) == 0 {
			return nil, fmt.Errorf("compound node requires at least one child")
		}
		children := make([]Node, 0, len(raw.Children))
		for i, c := range raw.Children {
			child, err := Parse(c)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			children = append(children, child)
		}
		return Compound{Op: op, Children: children, Invert: raw.Invert}, nil

	default:
		return nil, fmt.Errorf("node carries neither term nor operator")
	}
}

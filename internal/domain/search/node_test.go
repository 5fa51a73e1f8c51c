package search

import (
	"strings"
	"testing"
)

func TestParse_Term(t *testing.T) {
	node, err := Parse([]byte(`{"term": "alpha beta", "phrase": true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	term, ok := node.(Term)
	if !ok {
		t.Fatalf("expected Term, got %T", node)
	}
	if term.Text != "alpha beta" {
		t.Errorf("expected text 'alpha beta', got %q", term.Text)
	}
	if !term.Phrase {
		t.Error("expected phrase flag set")
	}
	if term.Invert {
		t.Error("expected invert flag unset")
	}
}

func TestParse_Compound(t *testing.T) {
	data := `{
		"operator": "AND",
		"invert": true,
		"children": [
			{"term": "alpha"},
			{"operator": "OR", "children": [{"term": "beta"}, {"term": "gamma", "invert": true}]}
		]
	}`

	node, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, ok := node.(Compound)
	if !ok {
		t.Fatalf("expected Compound, got %T", node)
	}
	if root.Op != And {
		t.Errorf("expected AND, got %q", root.Op)
	}
	if !root.Invert {
		t.Error("expected invert flag set")
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	inner, ok := root.Children[1].(Compound)
	if !ok {
		t.Fatalf("expected nested Compound, got %T", root.Children[1])
	}
	if inner.Op != Or {
		t.Errorf("expected OR, got %q", inner.Op)
	}
	leaf, ok := inner.Children[1].(Term)
	if !ok || !leaf.Invert {
		t.Errorf("expected inverted Term leaf, got %#v", inner.Children[1])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"malformed json", `{"term": `, "parse search node"},
		{"both term and operator", `{"term": "a", "operator": "AND"}`, "both term and operator"},
		{"neither", `{"invert": true}`, "neither term nor operator"},
		{"empty term", `{"term": ""}`, "term text is required"},
		{"bad operator", `{"operator": "XOR", "children": [{"term": "a"}]}`, "unsupported operator"},
		{"no children", `{"operator": "AND", "children": []}`, "at least one child"},
		{"bad child", `{"operator": "AND", "children": [{"term": ""}]}`, "child 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	root := Compound{Op: Or, Children: []Node{
		Term{Text: "alpha"},
		Term{Text: "beta gamma", Phrase: true},
	}}

	data, err := Marshal(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("parse marshaled node: %v", err)
	}
	got, ok := parsed.(Compound)
	if !ok {
		t.Fatalf("expected Compound, got %T", parsed)
	}
	if got.Op != Or || len(got.Children) != 2 {
		t.Errorf("round trip changed shape: %#v", got)
	}
}

package query

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

func TestCompile_Term(t *testing.T) {
	tests := []struct {
		name string
		node search.Node
		want string
	}{
		{
			name: "single token",
			node: search.Term{Text: "alpha"},
			want: "@__content:(alpha)",
		},
		{
			name: "multi token keyword",
			node: search.Term{Text: "alpha beta"},
			want: "@__content:(alpha beta)",
		},
		{
			name: "phrase",
			node: search.Term{Text: "alpha beta", Phrase: true},
			want: `@__content:"alpha beta"`,
		},
		{
			name: "inverted term",
			node: search.Term{Text: "alpha", Invert: true},
			want: "-(@__content:(alpha))",
		},
		{
			name: "escaped specials",
			node: search.Term{Text: "a-b c@d"},
			want: `@__content:(a\-b c\@d)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Compound(t *testing.T) {
	tests := []struct {
		name string
		node search.Node
		want string
	}{
		{
			name: "and",
			node: search.Compound{Op: search.And, Children: []search.Node{
				search.Term{Text: "alpha"}, search.Term{Text: "beta"},
			}},
			want: "(@__content:(alpha) @__content:(beta))",
		},
		{
			name: "or",
			node: search.Compound{Op: search.Or, Children: []search.Node{
				search.Term{Text: "alpha"}, search.Term{Text: "beta"},
			}},
			want: "(@__content:(alpha) | @__content:(beta))",
		},
		{
			name: "nested with invert",
			node: search.Compound{Op: search.And, Children: []search.Node{
				search.Term{Text: "alpha"},
				search.Compound{Op: search.Or, Invert: true, Children: []search.Node{
					search.Term{Text: "beta"}, search.Term{Text: "gamma", Phrase: true},
				}},
			}},
			want: `(@__content:(alpha) -((@__content:(beta) | @__content:"gamma")))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile(search.Term{Text: "   "}); err == nil {
		t.Error("expected error for blank term text")
	}
	if _, err := Compile(search.Compound{Op: search.And}); err == nil {
		t.Error("expected error for compound without children")
	}
	if _, err := Compile(search.Compound{Op: "XOR", Children: []search.Node{search.Term{Text: "a"}}}); err == nil {
		t.Error("expected error for unsupported operator")
	}
}

// Deeply nested trees must compile without blowing the stack.
func TestCompile_DeepNesting(t *testing.T) {
	var node search.Node = search.Term{Text: "leaf"}
	for i := 0; i < 10000; i++ {
		node = search.Compound{Op: search.And, Children: []search.Node{node}}
	}

	got, err := Compile(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "@__content:(leaf)") {
		t.Errorf("compiled query lost the leaf term")
	}
}

package corpusd

import (
	"testing"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestQuery_JSON(t *testing.T) {
	tests := []struct {
		name  string
		query *Query
		want  string
	}{
		{
			name:  "term",
			query: Term("alpha"),
			want:  `{"term":"alpha"}`,
		},
		{
			name:  "phrase",
			query: Phrase("alpha beta"),
			want:  `{"term":"alpha beta","phrase":true}`,
		},
		{
			name:  "negated term",
			query: Term("alpha").Not(),
			want:  `{"term":"alpha","invert":true}`,
		},
		{
			name:  "double negation cancels",
			query: Term("alpha").Not().Not(),
			want:  `{"term":"alpha"}`,
		},
		{
			name:  "and",
			query: And(Term("alpha"), Phrase("beta gamma")),
			want:  `{"operator":"AND","children":[{"term":"alpha"},{"term":"beta gamma","phrase":true}]}`,
		},
		{
			name:  "nested or",
			query: Or(Term("alpha"), And(Term("beta"), Term("gamma")).Not()),
			want:  `{"operator":"OR","children":[{"term":"alpha"},{"operator":"AND","children":[{"term":"beta"},{"term":"gamma"}],"invert":true}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query.JSON()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

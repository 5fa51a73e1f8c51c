package document

import (
	"strings"
	"testing"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Stats
	}{
		{
			name:    "simple",
			content: "the quick brown fox",
			want:    Stats{WordCount: 4, DocLength: 19, DistinctWordCount: 4, AvgWordLength: 4},
		},
		{
			name:    "case insensitive distinct",
			content: "Go go GO",
			want:    Stats{WordCount: 3, DocLength: 8, DistinctWordCount: 1, AvgWordLength: 2},
		},
		{
			name:    "whitespace only",
			content: "   \t\n ",
			want:    Stats{DocLength: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.content)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStats_RuneLengths(t *testing.T) {
	got := ComputeStats("héllo wörld")
	if got.DocLength != 11 {
		t.Errorf("expected doc length 11 runes, got %d", got.DocLength)
	}
	if got.AvgWordLength != 5 {
		t.Errorf("expected avg word length 5, got %g", got.AvgWordLength)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "", "content"); err == nil {
		t.Error("expected error for empty ID")
	}
	if _, err := New(strings.Repeat("x", 257), "", "content"); err == nil {
		t.Error("expected error for long ID")
	}
	if _, err := New("doc-1", "", ""); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := New("doc-1", "", strings.Repeat("a", MaxContentSize+1)); err == nil {
		t.Error("expected error for oversized content")
	}

	d, err := New("doc-1", "corpusd:c:doc:doc-1", "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stats().WordCount != 2 {
		t.Errorf("expected stats computed at creation, got %+v", d.Stats())
	}
}

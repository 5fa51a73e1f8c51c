package docset

import "github.com/kailas-cloud/corpusd/internal/domain/search"

// QueryExecution links a root search node to the document set it produced.
// Created once per execution.
type QueryExecution struct {
	ID      string
	Corpus  string
	Root    search.Node
	SetName string
}

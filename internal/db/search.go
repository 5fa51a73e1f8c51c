package db

// TextQuery is the input for a full-text search.
type TextQuery struct {
	IndexName string
	Query     string
	Size      int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search, in backend rank order.
type SearchEntry struct {
	Key   string
	Score float64
}

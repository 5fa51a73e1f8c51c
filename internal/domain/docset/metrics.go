package docset

// Metrics holds aggregate statistics for a document set. Recomputation is an
// upsert: the stored row is overwritten, never appended to.
type Metrics struct {
	DocumentCount          int
	TotalWordCount         int
	AvgWordCount           float64
	TotalDocLength         int
	AvgDocLength           float64
	TotalDistinctWordCount int
	AvgDistinctWordCount   float64
	AvgWordLength          float64
}

// QueryMetrics holds complexity and yield statistics for one query execution.
type QueryMetrics struct {
	WordCount    int
	TermCount    int
	Complexity   int
	HitsPerWord  float64
	HitsPerTerm  float64
	HitsPerQuery int
}

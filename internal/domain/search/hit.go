package search

// Hit is one ranked backend match, mapped back to the corpus-local document
// ID. Order of a hit slice is backend rank order.
type Hit struct {
	DocID string
	Score float64
}

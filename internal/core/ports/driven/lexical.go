package driven

// LexicalHit is a single term-based match against a corpus snapshot.
type LexicalHit struct {
	// Position is the document's ordinal position in the corpus the
	// index was built from. Scores resolve by position, not by ID; the
	// caller keeps a parallel ID slice in snapshot order.
	Position int

	// Score is the term-relevance score (e.g. BM25). Unbounded above.
	Score float64
}

// LexicalIndex provides term-based relevance scoring over a corpus
// snapshot. It does not observe documents ingested after it was built;
// that staleness boundary is owned by the retrieval pipeline cache.
type LexicalIndex interface {
	// Search returns up to k matches ordered by descending score, with
	// deterministic tie-breaking.
	Search(query string, k int) []LexicalHit

	// Size returns the number of documents in the snapshot.
	Size() int
}

// LexicalIndexBuilder constructs a LexicalIndex from a corpus
// snapshot. Invoked once per retrieval pipeline build.
type LexicalIndexBuilder func(corpus []string) LexicalIndex

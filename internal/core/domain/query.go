package domain

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// Limit is the maximum number of results. Defaults to 10.
	Limit int

	// MinSimilarity filters out results scoring below this value.
	// Applied after scoring, before truncation to Limit.
	MinSimilarity float64

	// Augment requests an LLM-synthesised answer from the top contexts.
	// Augmentation failure is non-fatal; results are returned without
	// an answer.
	Augment bool
}

// QueryResult is a single ranked retrieval hit. Produced fresh per
// query; never persisted.
type QueryResult struct {
	// ID is the matched entry's identifier.
	ID string

	// Title is the entry title.
	Title string

	// Content is the entry text.
	Content string

	// SimilarityScore is the bounded relevance score in [0, 1].
	SimilarityScore float64

	// Metadata is the entry's opaque metadata.
	Metadata map[string]string

	// Answer holds the synthesised answer. When augmentation succeeds,
	// exactly the highest-ranked result carries it; all others are nil.
	Answer *string
}

// QueryResponse is the typed outcome of a query: ranked results plus
// any non-fatal degradations that occurred while producing them, so
// callers can distinguish "no results" from "capability failure".
type QueryResponse struct {
	// Results is the ordered result set, at most Limit entries.
	Results []QueryResult

	// Warnings lists non-fatal degradations (reranker error,
	// augmentation failure, ...).
	Warnings []string
}

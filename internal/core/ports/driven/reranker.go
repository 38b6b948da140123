package driven

import "context"

// RerankCandidate is a fused retrieval candidate handed to the reranker.
type RerankCandidate struct {
	// ID maps the result back to the candidate.
	ID string

	// Content is the text scored against the query.
	Content string
}

// RerankResult is a candidate rescored by the reranker.
type RerankResult struct {
	// ID matches the candidate ID.
	ID string

	// Relevance is the model's relevance score, typically in [0, 1].
	Relevance float64
}

// Reranker rescores an already-fused candidate set against the
// original query with a more precise (and costlier) relevance model.
// Optional: when nil, fused order is final. On error, callers fall
// back to fused order.
type Reranker interface {
	// Rerank returns results sorted by relevance, descending.
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RerankResult, error)

	// ModelName returns the model identifier for logging.
	ModelName() string
}

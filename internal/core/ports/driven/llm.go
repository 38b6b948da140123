package driven

import "context"

// LLMService provides language model operations for answer synthesis
// and query understanding. This is an optional capability: when nil,
// augmentation is unavailable and queries degrade gracefully.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Ollama (local models)
//   - OpenAI-compatible inference servers
type LLMService interface {
	// Answer synthesises a single free-text answer to the query,
	// grounded in the given contexts (highest-ranked first).
	Answer(ctx context.Context, query string, contexts []string) (string, error)

	// RewriteQuery expands or rewrites a search query for better
	// recall: synonyms, typo fixes, abbreviation expansion.
	RewriteQuery(ctx context.Context, query string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, e.g. an
	// ingestion request with no content and no reference ID. Rejected
	// before any side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source type or backend kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or cannot be reached. Fatal for pipeline build.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Fatal only when augmentation is explicitly required.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured or cannot be reached. Fatal for pipeline build.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrPipelineBuildFailed indicates the retrieval pipeline for a
	// collection could not acquire a required capability. The failure is
	// terminal for the pipeline instance; a new instance must be built
	// after Invalidate or process restart.
	ErrPipelineBuildFailed = errors.New("retrieval pipeline build failed")
)

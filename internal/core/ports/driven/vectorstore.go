package driven

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
)

// BackendKind is the discoverable tag a vector store backend declares.
// Backend selection works over this closed variant set; the core never
// inspects a backend's internal fields.
type BackendKind string

// Known backend kinds.
const (
	// BackendMemory is the in-process, non-persistent backend.
	BackendMemory BackendKind = "memory"

	// BackendSQLite is the embedded persistent backend.
	BackendSQLite BackendKind = "sqlite"
)

// VectorHit is a single nearest-neighbour result.
type VectorHit struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Distance is the backend-defined distance to the query embedding.
	// Smaller means more similar. The retrieval layer normalises it to
	// a bounded similarity score.
	Distance float64
}

// VectorStore is the capability interface over a pluggable vector
// index backend. Entries are keyed by ID within named collections.
//
// No partial-failure semantics are defined for multi-entry batches;
// callers must not assume atomicity across a batch.
type VectorStore interface {
	// Kind returns the backend's declared kind tag.
	Kind() BackendKind

	// Upsert appends or overwrites entries keyed by ID.
	Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error

	// Get returns entries whose metadata matches every key-value pair
	// in filter. A nil or empty filter returns the full collection in
	// stable insertion order (the corpus snapshot used for lexical
	// index builds).
	Get(ctx context.Context, collection string, filter map[string]string) ([]domain.IndexEntry, error)

	// GetByID returns a single entry, or domain.ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (*domain.IndexEntry, error)

	// Query returns up to k entries ordered by ascending distance to
	// the embedding (nearest first).
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]VectorHit, error)

	// Delete removes an entry. Deleting an absent ID is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Close releases resources.
	Close() error
}

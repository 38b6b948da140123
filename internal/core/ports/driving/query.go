package driving

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
)

// QueryService answers natural-language queries against a collection.
type QueryService interface {
	// Query runs fused lexical+vector retrieval for the source type's
	// collection, building and caching the retrieval pipeline on first
	// use.
	Query(ctx context.Context, source domain.SourceType, query string, opts domain.QueryOptions) (*domain.QueryResponse, error)

	// Invalidate discards the cached retrieval pipeline for the source
	// type's collection so the next query rebuilds it against current
	// index contents.
	Invalidate(source domain.SourceType)
}

// DocumentService manages indexed entries directly.
type DocumentService interface {
	// Get retrieves an entry by ID.
	Get(ctx context.Context, source domain.SourceType, id string) (*domain.IndexEntry, error)

	// List returns entries in stable order with offset/limit pagination.
	List(ctx context.Context, source domain.SourceType, offset, limit int) ([]domain.IndexEntry, error)

	// Delete removes an entry from the collection.
	Delete(ctx context.Context, source domain.SourceType, id string) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
)

// IngestRequest is a single ingestion input.
type IngestRequest struct {
	// SourceType selects the target collection. Required.
	SourceType domain.SourceType

	// Content is the raw text to index. May be empty only when ID
	// references an item in an external system.
	Content string

	// Title is the display title.
	Title string

	// ID is an optional explicit identifier (e.g. an existing ticket
	// key). Reused verbatim as the stable entry key when set.
	ID string

	// Metadata carries opaque source-specific fields.
	Metadata map[string]string
}

// IngestReceipt reports the outcome of one ingestion.
type IngestReceipt struct {
	// ID is the entry's identifier, existing or newly generated.
	ID string

	// ContentHash is the derived fingerprint.
	ContentHash string

	// Deduplicated is true when the content matched an existing entry
	// and ingestion was a no-op returning that entry's ID.
	Deduplicated bool
}

// IngestService accepts knowledge items into the index.
type IngestService interface {
	// Ingest runs the dedup-embed-persist pipeline for one item.
	// Idempotent for byte-identical content.
	Ingest(ctx context.Context, req IngestRequest) (*IngestReceipt, error)
}

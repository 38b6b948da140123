package driven

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
)

// Fetcher retrieves a single knowledge item from an external system
// (ticket tracker, wiki, Q&A site) by its reference: a ticket key or a
// URL. Source-specific fields pass through as opaque metadata.
type Fetcher interface {
	// Fetch returns the item's content and metadata, or
	// domain.ErrNotFound when the reference does not exist upstream.
	Fetch(ctx context.Context, ref string) (*domain.SourceItem, error)
}

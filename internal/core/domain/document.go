package domain

import "time"

// SourceType identifies the kind of knowledge item an entry came from.
// It also selects the collection an entry is stored in.
type SourceType string

// Known source types.
const (
	SourceTicket SourceType = "ticket"
	SourceWiki   SourceType = "wiki"
	SourceQA     SourceType = "qa"
	SourceFile   SourceType = "file"
)

// Valid reports whether the source type is a known variant.
func (s SourceType) Valid() bool {
	switch s {
	case SourceTicket, SourceWiki, SourceQA, SourceFile:
		return true
	}
	return false
}

// Collection returns the vector collection name for this source type.
func (s SourceType) Collection() string {
	switch s {
	case SourceTicket:
		return "tickets"
	case SourceWiki:
		return "wiki_pages"
	case SourceQA:
		return "qa_threads"
	case SourceFile:
		return "files"
	}
	return string(s)
}

// MetaContentHash is the metadata key holding the derived content
// fingerprint. The ingestion pipeline always overwrites it; callers
// cannot supply their own value.
const MetaContentHash = "content_hash"

// IndexEntry is the persisted unit inside a vector collection.
// There is exactly one entry per ID per collection; re-ingesting the
// same ID overwrites rather than duplicates.
type IndexEntry struct {
	// ID is the collection-unique identifier. IDs from an external
	// system (e.g. a ticket key) are reused verbatim.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full normalised text.
	Content string

	// SourceType identifies where the entry came from.
	SourceType SourceType

	// Metadata contains opaque key-value pairs passed through from the
	// fetcher, plus the derived content_hash.
	Metadata map[string]string

	// Embedding is the fixed-length vector representation of Content.
	Embedding []float32

	// CreatedAt is when the entry was first indexed.
	CreatedAt time.Time
}

// SourceItem is the fetcher output handed to the ingestion pipeline:
// raw content plus source-specific fields passed through as metadata.
type SourceItem struct {
	// ID is an external identifier to reuse as the entry ID.
	// Empty means the pipeline generates one.
	ID string

	// Title is the display title, if the source provides one.
	Title string

	// Content is the raw text to index.
	Content string

	// Metadata carries source-specific fields (ticket status, wiki
	// space, ...) unmodified.
	Metadata map[string]string
}

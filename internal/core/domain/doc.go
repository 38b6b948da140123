// Package domain defines the core business entities for Curio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - IndexEntry: The persisted unit inside a vector collection
//   - SourceType: The kind of knowledge item (ticket, wiki, qa, file)
//   - QueryResult: A single ranked retrieval hit
//   - Fingerprint: Content normalisation and hashing for deduplication
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

package mcp

import (
	"github.com/custodia-labs/curio/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server exposes.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers retrieval queries.
	Query driving.QueryService

	// Ingest accepts knowledge items. Optional; without it the ingest
	// tool is not registered.
	Ingest driving.IngestService

	// Document manages indexed entries. Optional; without it the
	// document resources are not registered.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

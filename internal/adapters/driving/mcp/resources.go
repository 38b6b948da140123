package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/curio/internal/core/domain"
)

// uriScheme is the custom URI scheme for Curio resources.
const uriScheme = "curio://"

// listLimit caps how many entries a collection resource returns.
const listLimit = 200

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the available collections.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "The knowledge collections curio indexes",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	if s.ports.Document == nil {
		return
	}

	// Template for a collection's entries.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{source}/entries",
		Name:        "collection-entries",
		Description: "Entries indexed in a knowledge collection",
		MIMEType:    "application/json",
	}, s.handleEntriesResource)

	// Template for a single entry's content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{source}/entries/{id}",
		Name:        "entry-content",
		Description: "Content of a single indexed entry",
		MIMEType:    "text/plain",
	}, s.handleEntryContentResource)
}

// handleCollectionsResource lists the supported source types.
func (s *Server) handleCollectionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type collectionInfo struct {
		Source     string `json:"source"`
		Collection string `json:"collection"`
	}

	sources := []domain.SourceType{
		domain.SourceTicket, domain.SourceWiki, domain.SourceQA, domain.SourceFile,
	}
	infos := make([]collectionInfo, len(sources))
	for i, src := range sources {
		infos[i] = collectionInfo{Source: string(src), Collection: src.Collection()}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEntriesResource lists a collection's entries as JSON.
func (s *Server) handleEntriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	source, rest, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("unexpected resource path %q", req.Params.URI)
	}

	entries, err := s.ports.Document.List(ctx, source, 0, listLimit)
	if err != nil {
		return nil, err
	}

	type entryInfo struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	infos := make([]entryInfo, len(entries))
	for i, entry := range entries {
		infos[i] = entryInfo{ID: entry.ID, Title: entry.Title}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEntryContentResource returns one entry's content as text.
func (s *Server) handleEntryContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	source, id, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("missing entry id in %q", req.Params.URI)
	}

	entry, err := s.ports.Document.Get(ctx, source, id)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     entry.Content,
		}},
	}, nil
}

// parseResourceURI splits curio://{source}/entries[/{id}] into the
// source type and optional entry ID.
func parseResourceURI(uri string) (domain.SourceType, string, error) {
	path, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", "", fmt.Errorf("unexpected resource URI %q", uri)
	}

	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 || parts[1] != "entries" {
		return "", "", fmt.Errorf("unexpected resource path %q", uri)
	}

	source := domain.SourceType(parts[0])
	if !source.Valid() {
		return "", "", fmt.Errorf("unknown source %q", parts[0])
	}

	if len(parts) == 3 {
		return source, parts[2], nil
	}
	return source, "", nil
}

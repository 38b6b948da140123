package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Source        string  `json:"source" jsonschema:"knowledge source to search: ticket, wiki, qa or file"`
	Query         string  `json:"query" jsonschema:"the natural-language query"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
	MinSimilarity float64 `json:"min_similarity,omitempty" jsonschema:"drop results scoring below this threshold, 0 to 1"`
	Augment       bool    `json:"augment,omitempty" jsonschema:"synthesise an answer from the top results"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results  []QueryResultOutput `json:"results"`
	Count    int                 `json:"count"`
	Answer   string              `json:"answer,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

// QueryResultOutput represents a single retrieval result.
type QueryResultOutput struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Source  string            `json:"source" jsonschema:"knowledge source the item belongs to: ticket, wiki, qa or file"`
	Content string            `json:"content" jsonschema:"raw text to index"`
	Title   string            `json:"title,omitempty" jsonschema:"display title"`
	ID      string            `json:"id,omitempty" jsonschema:"optional stable identifier, e.g. a ticket key"`
	Meta    map[string]string `json:"metadata,omitempty" jsonschema:"opaque source-specific metadata"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	ID           string `json:"id"`
	ContentHash  string `json:"content_hash"`
	Deduplicated bool   `json:"deduplicated"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Search a knowledge collection with fused semantic and keyword retrieval",
	}, s.handleQuery)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Add a knowledge item to the index, deduplicated by content",
		}, s.handleIngest)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	source := domain.SourceType(input.Source)
	if !source.Valid() {
		return nil, QueryOutput{}, fmt.Errorf("unknown source %q", input.Source)
	}

	opts := domain.QueryOptions{
		Limit:         input.Limit,
		MinSimilarity: input.MinSimilarity,
		Augment:       input.Augment,
	}
	resp, err := s.ports.Query.Query(ctx, source, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results:  make([]QueryResultOutput, len(resp.Results)),
		Count:    len(resp.Results),
		Warnings: resp.Warnings,
	}
	for i := range resp.Results {
		output.Results[i] = QueryResultOutput{
			ID:       resp.Results[i].ID,
			Title:    resp.Results[i].Title,
			Score:    resp.Results[i].SimilarityScore,
			Content:  resp.Results[i].Content,
			Metadata: resp.Results[i].Metadata,
		}
	}
	if len(resp.Results) > 0 && resp.Results[0].Answer != nil {
		output.Answer = *resp.Results[0].Answer
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	receipt, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		SourceType: domain.SourceType(input.Source),
		Content:    input.Content,
		Title:      input.Title,
		ID:         input.ID,
		Metadata:   input.Meta,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		ID:           receipt.ID,
		ContentHash:  receipt.ContentHash,
		Deduplicated: receipt.Deduplicated,
	}, nil
}

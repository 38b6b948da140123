// Package cohere provides a reranker adapter backed by the Cohere
// Rerank API.
package cohere

import (
	"context"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultModel is the Cohere rerank model used when none is configured.
const DefaultModel = "rerank-v3.5"

// Documents longer than this are truncated before submission; the API
// rejects oversized inputs.
const maxDocumentBytes = 10000

// Config holds configuration for the Cohere reranker.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// Model is the rerank model (default: rerank-v3.5).
	Model string

	// BaseURL overrides the API endpoint, e.g. for a private deployment.
	BaseURL string
}

// Reranker rescores retrieval candidates using the Cohere Rerank API.
type Reranker struct {
	client *cohereclient.Client
	model  string
}

// NewReranker creates a new Cohere reranker.
func NewReranker(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{option.WithToken(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Reranker{
		client: cohereclient.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Rerank rescores the candidates against the query. Results come back
// sorted by relevance, descending, and map to candidates by ID.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []driven.RerankCandidate) ([]driven.RerankResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		content := c.Content
		if len(content) > maxDocumentBytes {
			content = content[:maxDocumentBytes]
		}
		documents[i] = content
	}

	topN := len(candidates)
	resp, err := r.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      &topN,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}

	results := make([]driven.RerankResult, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || int(res.Index) >= len(candidates) {
			continue
		}
		results = append(results, driven.RerankResult{
			ID:        candidates[res.Index].ID,
			Relevance: res.RelevanceScore,
		})
	}
	return results, nil
}

// ModelName returns the rerank model identifier.
func (r *Reranker) ModelName() string {
	return r.model
}

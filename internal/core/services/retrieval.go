package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/logger"
)

// rrfK is the Reciprocal Rank Fusion constant. 60 is the standard
// value; it keeps a single top rank from dominating the fused score.
const rrfK = 60

// RetrievalPipeline answers queries against one collection. It owns a
// vector store handle, a lexical index built from the corpus snapshot
// taken at build time, and optional reranker/LLM handles.
//
// A pipeline never observes documents ingested after its build in its
// lexical index; the vector store handle is live. This staleness
// boundary holds until the owning Registry invalidates the pipeline.
type RetrievalPipeline struct {
	collection string
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	reranker   driven.Reranker
	llm        driven.LLMService

	// Corpus snapshot, positionally aligned with the lexical index.
	corpus  []domain.IndexEntry
	lexical driven.LexicalIndex
}

// candidate is an intermediate fused retrieval result.
type candidate struct {
	entry      domain.IndexEntry
	fused      float64
	similarity float64
	vectorRank int // -1 when the vector search did not return it
	lexRank    int // -1 when the lexical search did not return it
}

// Query runs fused retrieval: vector and lexical candidates are merged
// with Reciprocal Rank Fusion, optionally reranked, scored into [0,1],
// threshold-filtered and truncated to the requested limit. A keyword
// miss is retried once with an LLM-rewritten query when an LLM is
// configured; rewrite failure keeps the original query.
func (p *RetrievalPipeline) Query(ctx context.Context, query string, opts domain.QueryOptions) (*domain.QueryResponse, error) {
	logger.Section("Query Execution")
	logger.Debug("Collection: %s, query: %q", p.collection, query)

	resp := &domain.QueryResponse{}

	query = strings.TrimSpace(query)
	if query == "" {
		return resp, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// Over-fetch so threshold filtering and fusion dedup still leave
	// enough candidates to fill the limit.
	candidateLimit := limit * 2
	if candidateLimit < 10 {
		candidateLimit = 10
	}

	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vectorHits, vectorErr := p.store.Query(ctx, p.collection, embedding, candidateLimit)
	lexicalHits := p.lexical.Search(query, candidateLimit)

	// Expand query using LLM on a keyword miss: terse queries often
	// fail the lexical channel on vocabulary alone.
	if len(lexicalHits) == 0 && p.llm != nil {
		expanded, warn := p.rewriteQuery(ctx, query)
		if warn != "" {
			resp.Warnings = append(resp.Warnings, warn)
		}
		if expanded != "" {
			lexicalHits = p.lexical.Search(expanded, candidateLimit)
		}
	}

	if vectorErr != nil {
		if len(lexicalHits) == 0 {
			return nil, fmt.Errorf("vector search: %w", vectorErr)
		}
		logger.Warn("Vector search failed, using lexical candidates only: %v", vectorErr)
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("vector search degraded: %v", vectorErr))
		vectorHits = nil
	}
	logger.Debug("Candidates: %d vector, %d lexical", len(vectorHits), len(lexicalHits))

	candidates := p.fuse(vectorHits, lexicalHits)

	if p.reranker != nil {
		if warn := p.rerank(ctx, query, candidates); warn != "" {
			resp.Warnings = append(resp.Warnings, warn)
		}
	}

	// Threshold filtering happens after scoring and before truncation.
	results := make([]domain.QueryResult, 0, limit)
	for _, c := range candidates {
		if c.similarity < opts.MinSimilarity {
			continue
		}
		results = append(results, domain.QueryResult{
			ID:              c.entry.ID,
			Title:           c.entry.Title,
			Content:         c.entry.Content,
			SimilarityScore: c.similarity,
			Metadata:        c.entry.Metadata,
		})
		if len(results) == limit {
			break
		}
	}
	resp.Results = results

	if opts.Augment {
		if warn := p.augment(ctx, query, resp); warn != "" {
			resp.Warnings = append(resp.Warnings, warn)
		}
	}

	logger.Info("Returning %d results", len(resp.Results))
	return resp, nil
}

// fuse merges the two candidate lists with Reciprocal Rank Fusion
// (score 1/(60+rank+1) summed across lists), deduplicating by ID.
// Ordering is fused score descending; ties break by vector rank, then
// lexical rank, then ID ascending, so identical inputs against
// unchanged index state always produce identical orderings.
//
// Each candidate also receives a bounded similarity: vector candidates
// use 1 - min(distance/2, 1); lexical-only candidates use their BM25
// score normalised by the best BM25 score in this result set. A
// configured reranker later overrides both.
func (p *RetrievalPipeline) fuse(vectorHits []driven.VectorHit, lexicalHits []driven.LexicalHit) []*candidate {
	byID := make(map[string]*candidate)
	var order []*candidate

	get := func(entry domain.IndexEntry) *candidate {
		if c, ok := byID[entry.ID]; ok {
			return c
		}
		c := &candidate{entry: entry, vectorRank: -1, lexRank: -1}
		byID[entry.ID] = c
		order = append(order, c)
		return c
	}

	for rank, hit := range vectorHits {
		c := get(hit.Entry)
		c.vectorRank = rank
		c.fused += 1.0 / float64(rrfK+rank+1)
		c.similarity = similarityFromDistance(hit.Distance)
	}

	var maxLexScore float64
	for _, hit := range lexicalHits {
		if hit.Score > maxLexScore {
			maxLexScore = hit.Score
		}
	}
	for rank, hit := range lexicalHits {
		if hit.Position < 0 || hit.Position >= len(p.corpus) {
			continue
		}
		c := get(p.corpus[hit.Position])
		c.lexRank = rank
		c.fused += 1.0 / float64(rrfK+rank+1)
		if c.vectorRank == -1 && maxLexScore > 0 {
			c.similarity = clamp01(hit.Score / maxLexScore)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.fused != b.fused {
			return a.fused > b.fused
		}
		if a.vectorRank != b.vectorRank {
			return rankLess(a.vectorRank, b.vectorRank)
		}
		if a.lexRank != b.lexRank {
			return rankLess(a.lexRank, b.lexRank)
		}
		return a.entry.ID < b.entry.ID
	})

	return order
}

// rewriteQuery asks the LLM to expand the query for keyword search.
// Returns the rewritten query, or empty when the rewrite failed or was
// unusable, plus a warning string on failure.
func (p *RetrievalPipeline) rewriteQuery(ctx context.Context, query string) (string, string) {
	expanded, err := p.llm.RewriteQuery(ctx, query)
	if err != nil {
		logger.Warn("Query rewrite failed, keeping original query: %v", err)
		return "", fmt.Sprintf("query expansion degraded: %v", err)
	}

	expanded = strings.TrimSpace(expanded)
	if expanded == "" || expanded == query {
		return "", ""
	}
	logger.Info("Query rewritten for keyword search: %q", expanded)
	return expanded, ""
}

// rerank rescores the fused candidates in place. A reranker failure
// is non-fatal: fused order stands and a warning is returned.
func (p *RetrievalPipeline) rerank(ctx context.Context, query string, candidates []*candidate) string {
	if len(candidates) == 0 {
		return ""
	}

	input := make([]driven.RerankCandidate, len(candidates))
	for i, c := range candidates {
		input[i] = driven.RerankCandidate{ID: c.entry.ID, Content: c.entry.Content}
	}

	results, err := p.reranker.Rerank(ctx, query, input)
	if err != nil {
		logger.Warn("Rerank failed, keeping fused order: %v", err)
		return fmt.Sprintf("rerank degraded: %v", err)
	}

	relevance := make(map[string]float64, len(results))
	for _, r := range results {
		relevance[r.ID] = r.Relevance
	}
	for _, c := range candidates {
		if rel, ok := relevance[c.entry.ID]; ok {
			c.similarity = clamp01(rel)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		return a.entry.ID < b.entry.ID
	})
	return ""
}

// augment synthesises an answer from the top contexts and attaches it
// to the highest-ranked result. Failure is non-fatal.
func (p *RetrievalPipeline) augment(ctx context.Context, query string, resp *domain.QueryResponse) string {
	if len(resp.Results) == 0 {
		return ""
	}
	if p.llm == nil {
		return "augmentation unavailable: no LLM configured"
	}

	contexts := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		contexts[i] = r.Content
	}

	answer, err := p.llm.Answer(ctx, query, contexts)
	if err != nil {
		logger.Warn("Augmentation failed, returning contexts without answer: %v", err)
		return fmt.Sprintf("augmentation degraded: %v", err)
	}

	// Exactly the top-ranked result carries the answer.
	resp.Results[0].Answer = &answer
	return ""
}

// similarityFromDistance maps a backend distance in [0, inf) to a
// bounded similarity: 1 - min(distance/2, 1). Distance 2 represents
// maximal dissimilarity for the normalised cosine-like spaces the
// bundled backends use; other backends must renormalise first.
func similarityFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	scaled := distance / 2
	if scaled > 1 {
		scaled = 1
	}
	return clamp01(1 - scaled)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// rankLess orders ranks ascending with -1 (absent) last.
func rankLess(a, b int) bool {
	if a == -1 {
		return false
	}
	if b == -1 {
		return true
	}
	return a < b
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
	"github.com/custodia-labs/curio/internal/logger"
)

// Ensure Registry implements the interface.
var _ driving.QueryService = (*Registry)(nil)

// pipelineState tracks the lifecycle of one collection's cached
// retrieval pipeline.
type pipelineState int

const (
	stateUnbuilt pipelineState = iota
	stateBuilding
	stateReady
	stateBuildFailed
)

// PipelineDeps are the backends a retrieval pipeline is built from.
// Store and Embedder are required; Reranker and LLM are optional and
// their absence degrades the corresponding query feature.
type PipelineDeps struct {
	Store    driven.VectorStore
	Embedder driven.EmbeddingService
	Reranker driven.Reranker
	LLM      driven.LLMService

	// BuildIndex constructs the lexical index from the corpus snapshot.
	BuildIndex driven.LexicalIndexBuilder

	// RequireAugmentation makes a missing LLM a build failure instead of
	// a per-query warning.
	RequireAugmentation bool
}

// Registry lazily builds and process-caches one retrieval pipeline per
// collection. The first query against a collection pays the build cost
// (corpus snapshot plus lexical index construction); subsequent
// queries reuse the cached pipeline until Invalidate.
//
// A failed build is sticky: the collection stays in the failed state
// and every query returns the original build error until Invalidate
// resets it. Transient backend faults must not silently retry on every
// request.
type Registry struct {
	deps PipelineDeps

	mu    sync.Mutex
	slots map[string]*pipelineSlot
}

// pipelineSlot holds the cached pipeline and lifecycle state for one
// collection. Its mutex covers the whole build so concurrent first
// queries trigger exactly one build; later arrivals block on it and
// then reuse the result.
type pipelineSlot struct {
	mu       sync.Mutex
	state    pipelineState
	pipeline *RetrievalPipeline
	buildErr error
}

// NewRegistry creates a pipeline registry over the given backends.
func NewRegistry(deps PipelineDeps) *Registry {
	return &Registry{deps: deps}
}

// Query resolves the source type's pipeline, building it on first use,
// and runs the query through it.
func (r *Registry) Query(ctx context.Context, source domain.SourceType, query string, opts domain.QueryOptions) (*domain.QueryResponse, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, source)
	}

	pipeline, err := r.resolve(ctx, source.Collection())
	if err != nil {
		return nil, err
	}
	return pipeline.Query(ctx, query, opts)
}

// Invalidate discards the collection's cached pipeline, including a
// sticky build failure. The next query rebuilds from current index
// contents.
func (r *Registry) Invalidate(source domain.SourceType) {
	if !source.Valid() {
		return
	}
	collection := source.Collection()

	r.mu.Lock()
	slot := r.slots[collection]
	delete(r.slots, collection)
	r.mu.Unlock()

	if slot != nil {
		logger.Info("Invalidated retrieval pipeline for %s", collection)
	}
}

// resolve returns the collection's ready pipeline, building it if this
// is the first query since startup or the last Invalidate.
func (r *Registry) resolve(ctx context.Context, collection string) (*RetrievalPipeline, error) {
	r.mu.Lock()
	if r.slots == nil {
		r.slots = make(map[string]*pipelineSlot)
	}
	slot := r.slots[collection]
	if slot == nil {
		slot = &pipelineSlot{}
		r.slots[collection] = slot
	}
	r.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	switch slot.state {
	case stateReady:
		return slot.pipeline, nil
	case stateBuildFailed:
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrPipelineBuildFailed, collection, slot.buildErr)
	}

	slot.state = stateBuilding
	pipeline, err := r.build(ctx, collection)
	if err != nil {
		slot.state = stateBuildFailed
		slot.buildErr = err
		logger.Warn("Pipeline build failed for %s: %v", collection, err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrPipelineBuildFailed, collection, err)
	}

	slot.state = stateReady
	slot.pipeline = pipeline
	return pipeline, nil
}

// build snapshots the collection's corpus and assembles a pipeline.
func (r *Registry) build(ctx context.Context, collection string) (*RetrievalPipeline, error) {
	logger.Section("Pipeline Build")
	logger.Debug("Building retrieval pipeline for %s", collection)

	if r.deps.Store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if r.deps.Embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.deps.BuildIndex == nil {
		return nil, fmt.Errorf("no lexical index builder configured")
	}
	if r.deps.RequireAugmentation && r.deps.LLM == nil {
		// Fail at build, not on the first augmented query.
		return nil, domain.ErrLLMUnavailable
	}

	corpus, err := r.deps.Store.Get(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot corpus: %w", err)
	}

	texts := make([]string, len(corpus))
	for i, entry := range corpus {
		texts[i] = entry.Content
	}

	pipeline := &RetrievalPipeline{
		collection: collection,
		store:      r.deps.Store,
		embedder:   r.deps.Embedder,
		reranker:   r.deps.Reranker,
		llm:        r.deps.LLM,
		corpus:     corpus,
		lexical:    r.deps.BuildIndex(texts),
	}
	logger.Info("Pipeline ready for %s (%d documents indexed)", collection, len(corpus))
	return pipeline, nil
}

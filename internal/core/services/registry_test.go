package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curio/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// countingStore counts corpus snapshots so tests can observe how many
// pipeline builds actually ran.
type countingStore struct {
	driven.VectorStore
	snapshots atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, name string, filter map[string]string) ([]domain.IndexEntry, error) {
	if filter == nil {
		c.snapshots.Add(1)
	}
	return c.VectorStore.Get(ctx, name, filter)
}

func TestRegistry_BuildOnceUnderConcurrency(t *testing.T) {
	inner := memory.NewStore()
	seedTickets(t, inner)
	store := &countingStore{VectorStore: inner}
	registry := newTestRegistry(store, ssoEmbedder())
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}
	assert.Equal(t, int64(1), store.snapshots.Load())
}

func TestRegistry_PipelineCachedAcrossQueries(t *testing.T) {
	inner := memory.NewStore()
	seedTickets(t, inner)
	store := &countingStore{VectorStore: inner}
	registry := newTestRegistry(store, ssoEmbedder())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), store.snapshots.Load())
}

func TestRegistry_CollectionsBuildIndependently(t *testing.T) {
	inner := memory.NewStore()
	seedTickets(t, inner)
	store := &countingStore{VectorStore: inner}
	registry := newTestRegistry(store, ssoEmbedder())
	ctx := context.Background()

	_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.NoError(t, err)
	_, err = registry.Query(ctx, domain.SourceWiki, "key rotation runbook", domain.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.snapshots.Load())
}

func TestRegistry_BuildFailureIsStickyUntilInvalidate(t *testing.T) {
	inner := memory.NewStore()
	seedTickets(t, inner)
	store := &faultyStore{VectorStore: inner, getErr: errBackendDown}
	registry := newTestRegistry(store, ssoEmbedder())
	ctx := context.Background()

	_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)

	// The backend recovers, but the failed state is sticky.
	store.getErr = nil
	_, err = registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)

	registry.Invalidate(domain.SourceTicket)
	resp, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
}

func TestRegistry_InvalidateRebuildsLexicalSnapshot(t *testing.T) {
	inner := memory.NewStore()
	seedTickets(t, inner)
	store := &countingStore{VectorStore: inner}
	registry := newTestRegistry(store, ssoEmbedder())
	ctx := context.Background()

	_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), store.snapshots.Load())

	registry.Invalidate(domain.SourceTicket)

	_, err = registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.snapshots.Load())
}

func TestRegistry_InvalidateUnbuiltCollectionIsNoop(t *testing.T) {
	registry := newTestRegistry(memory.NewStore(), ssoEmbedder())
	registry.Invalidate(domain.SourceTicket)
	registry.Invalidate("carrier_pigeon")
}

func TestRegistry_RequireAugmentationFailsBuildWithoutLLM(t *testing.T) {
	store := memory.NewStore()
	seedTickets(t, store)
	registry := NewRegistry(PipelineDeps{
		Store:               store,
		Embedder:            ssoEmbedder(),
		BuildIndex:          bm25Builder,
		RequireAugmentation: true,
	})
	ctx := context.Background()

	_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)
}

func TestRegistry_RequireAugmentationWithLLM(t *testing.T) {
	store := memory.NewStore()
	seedTickets(t, store)
	registry := NewRegistry(PipelineDeps{
		Store:               store,
		Embedder:            ssoEmbedder(),
		BuildIndex:          bm25Builder,
		LLM:                 &mockLLMService{answer: "ok"},
		RequireAugmentation: true,
	})
	ctx := context.Background()

	_, err := registry.Query(ctx, domain.SourceTicket, "SSO login error", domain.QueryOptions{})
	require.NoError(t, err)
}

func TestRegistry_UnknownSourceType(t *testing.T) {
	registry := newTestRegistry(memory.NewStore(), ssoEmbedder())
	ctx := context.Background()

	_, err := registry.Query(ctx, "carrier_pigeon", "anything", domain.QueryOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_MissingDependenciesFailBuild(t *testing.T) {
	ctx := context.Background()

	registry := NewRegistry(PipelineDeps{Embedder: ssoEmbedder(), BuildIndex: bm25Builder})
	_, err := registry.Query(ctx, domain.SourceTicket, "q", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)

	registry = NewRegistry(PipelineDeps{Store: memory.NewStore(), BuildIndex: bm25Builder})
	_, err = registry.Query(ctx, domain.SourceTicket, "q", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)

	registry = NewRegistry(PipelineDeps{Store: memory.NewStore(), Embedder: ssoEmbedder()})
	_, err = registry.Query(ctx, domain.SourceTicket, "q", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrPipelineBuildFailed)
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

func entry(id, content string, embedding []float32, metadata map[string]string) domain.IndexEntry {
	return domain.IndexEntry{
		ID:         id,
		Title:      id,
		Content:    content,
		SourceType: domain.SourceTicket,
		Metadata:   metadata,
		Embedding:  embedding,
	}
}

func TestStore_Kind(t *testing.T) {
	assert.Equal(t, driven.BackendMemory, NewStore().Kind())
}

func TestStore_UpsertAndGetByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "first", []float32{1, 0}, nil),
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "tickets", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "tickets", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Upsert_OverwritesSameID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "old", []float32{1, 0}, nil),
	}))
	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "new", []float32{0, 1}, nil),
	}))

	all, err := store.Get(ctx, "tickets", nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new", all[0].Content)
}

func TestStore_Get_PreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
			entry(id, id, []float32{1, 0}, nil),
		}))
	}

	all, err := store.Get(ctx, "tickets", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, "b", all[2].ID)
}

func TestStore_Get_MetadataFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "a", []float32{1, 0}, map[string]string{domain.MetaContentHash: "h1"}),
		entry("t-2", "b", []float32{0, 1}, map[string]string{domain.MetaContentHash: "h2"}),
	}))

	matches, err := store.Get(ctx, "tickets", map[string]string{domain.MetaContentHash: "h2"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "t-2", matches[0].ID)
}

func TestStore_Query_NearestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("far", "far", []float32{-1, 0}, nil),
		entry("near", "near", []float32{1, 0}, nil),
		entry("mid", "mid", []float32{1, 1}, nil),
	}))

	hits, err := store.Query(ctx, "tickets", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "near", hits[0].Entry.ID)
	assert.Equal(t, "mid", hits[1].Entry.ID)
	assert.Equal(t, "far", hits[2].Entry.ID)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-9)
	assert.InDelta(t, 2.0, hits[2].Distance, 1e-9)
}

func TestStore_Query_RespectsK(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("a", "a", []float32{1, 0}, nil),
		entry("b", "b", []float32{0, 1}, nil),
		entry("c", "c", []float32{1, 1}, nil),
	}))

	hits, err := store.Query(ctx, "tickets", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestStore_Query_EmptyCollection(t *testing.T) {
	store := NewStore()

	hits, err := store.Query(context.Background(), "tickets", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "a", []float32{1, 0}, nil),
	}))
	require.NoError(t, store.Delete(ctx, "tickets", "t-1"))

	_, err := store.GetByID(ctx, "tickets", "t-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "tickets", "t-1"))
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, cosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1.0, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2.0, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 2.0, cosineDistance([]float32{1, 0}, []float32{0, 0}), 1e-9)
	assert.InDelta(t, 2.0, cosineDistance([]float32{1}, []float32{1, 0}), 1e-9)
}

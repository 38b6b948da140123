package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(id, content string, embedding []float32, metadata map[string]string) domain.IndexEntry {
	return domain.IndexEntry{
		ID:         id,
		Title:      id,
		Content:    content,
		SourceType: domain.SourceWiki,
		Metadata:   metadata,
		Embedding:  embedding,
	}
}

func TestStore_Kind(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, driven.BackendSQLite, store.Kind())
}

func TestStore_UpsertAndGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("w-1", "page content", []float32{0.5, 0.25, -1},
			map[string]string{"space": "ENG", domain.MetaContentHash: "h1"}),
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "wiki_pages", "w-1")
	require.NoError(t, err)
	assert.Equal(t, "page content", got.Content)
	assert.Equal(t, domain.SourceWiki, got.SourceType)
	assert.Equal(t, "ENG", got.Metadata["space"])
	assert.Equal(t, []float32{0.5, 0.25, -1}, got.Embedding)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), "wiki_pages", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Upsert_OverwritePreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("w-1", "first", []float32{1, 0}, nil),
		entry("w-2", "second", []float32{0, 1}, nil),
	}))
	// Overwriting w-1 must not move it behind w-2.
	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("w-1", "first updated", []float32{1, 0}, nil),
	}))

	all, err := store.Get(ctx, "wiki_pages", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "w-1", all[0].ID)
	assert.Equal(t, "first updated", all[0].Content)
	assert.Equal(t, "w-2", all[1].ID)
}

func TestStore_Get_MetadataFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("w-1", "a", []float32{1, 0}, map[string]string{domain.MetaContentHash: "h1"}),
		entry("w-2", "b", []float32{0, 1}, map[string]string{domain.MetaContentHash: "h2"}),
	}))

	matches, err := store.Get(ctx, "wiki_pages", map[string]string{domain.MetaContentHash: "h1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "w-1", matches[0].ID)
}

func TestStore_Query_NearestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("far", "far", []float32{-1, 0}, nil),
		entry("near", "near", []float32{1, 0}, nil),
	}))

	hits, err := store.Query(ctx, "wiki_pages", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].Entry.ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestStore_Query_SkipsEntriesWithoutEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("no-vec", "text only", nil, nil),
		entry("vec", "with vector", []float32{1, 0}, nil),
	}))

	hits, err := store.Query(ctx, "wiki_pages", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "vec", hits[0].Entry.ID)
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "ticket", []float32{1, 0}, nil),
	}))

	all, err := store.Get(ctx, "wiki_pages", nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "wiki_pages", []domain.IndexEntry{
		entry("w-1", "a", []float32{1, 0}, nil),
	}))
	require.NoError(t, store.Delete(ctx, "wiki_pages", "w-1"))

	_, err := store.GetByID(ctx, "wiki_pages", "w-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "wiki_pages", "w-1"))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "tickets", []domain.IndexEntry{
		entry("t-1", "persisted", []float32{1, 2, 3}, nil),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByID(ctx, "tickets", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Content)
	assert.Equal(t, []float32{1, 2, 3}, got.Embedding)
}

func TestFloat32Roundtrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3e-7}

	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
	assert.Nil(t, bytesToFloat32Slice([]byte{1, 2, 3}))
}

// Package memory provides an in-process, non-persistent vector store
// backend. Useful for tests and single-run ingestion sessions.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
// Entries use cosine distance (1 - cosine similarity), so distances
// fall in [0, 2] and 2 represents maximal dissimilarity.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// collection keeps entries by ID plus insertion order, which defines
// the stable corpus-snapshot ordering.
type collection struct {
	entries map[string]domain.IndexEntry
	order   []string
}

// NewStore creates a new in-memory vector store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

// Kind returns the backend's declared kind tag.
func (s *Store) Kind() driven.BackendKind {
	return driven.BackendMemory
}

// Upsert appends or overwrites entries keyed by ID.
func (s *Store) Upsert(_ context.Context, name string, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[name]
	if coll == nil {
		coll = &collection{entries: make(map[string]domain.IndexEntry)}
		s.collections[name] = coll
	}

	for _, entry := range entries {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		if _, exists := coll.entries[entry.ID]; !exists {
			coll.order = append(coll.order, entry.ID)
		}
		coll.entries[entry.ID] = entry
	}
	return nil
}

// Get returns entries matching every filter pair, in insertion order.
// A nil or empty filter returns the whole collection.
func (s *Store) Get(_ context.Context, name string, filter map[string]string) ([]domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collections[name]
	if coll == nil {
		return nil, nil
	}

	var result []domain.IndexEntry
	for _, id := range coll.order {
		entry := coll.entries[id]
		if matchesFilter(entry.Metadata, filter) {
			result = append(result, entry)
		}
	}
	return result, nil
}

// GetByID returns a single entry, or domain.ErrNotFound.
func (s *Store) GetByID(_ context.Context, name, id string) (*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collections[name]
	if coll == nil {
		return nil, domain.ErrNotFound
	}
	entry, ok := coll.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Query returns up to k entries ordered by ascending cosine distance.
// Ties break by ID for reproducibility.
func (s *Store) Query(_ context.Context, name string, embedding []float32, k int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collections[name]
	if coll == nil || k <= 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(coll.order))
	for _, id := range coll.order {
		entry := coll.entries[id]
		if len(entry.Embedding) == 0 {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Entry:    entry,
			Distance: cosineDistance(embedding, entry.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entry.ID < hits[j].Entry.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes an entry. Deleting an absent ID is not an error.
func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[name]
	if coll == nil {
		return nil
	}
	if _, ok := coll.entries[id]; !ok {
		return nil
	}
	delete(coll.entries, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// matchesFilter reports whether metadata contains every filter pair.
func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// cosineDistance computes 1 - cosine similarity. Mismatched or
// zero-magnitude vectors are maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

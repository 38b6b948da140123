package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
	"github.com/custodia-labs/curio/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages indexed entries directly, bypassing
// retrieval. Deletions do not invalidate cached pipelines; callers
// that need the lexical index to forget a document invalidate the
// collection themselves.
type DocumentService struct {
	store driven.VectorStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.VectorStore) *DocumentService {
	return &DocumentService{store: store}
}

// Get retrieves an entry by ID.
func (s *DocumentService) Get(ctx context.Context, source domain.SourceType, id string) (*domain.IndexEntry, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, source)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}
	return s.store.GetByID(ctx, source.Collection(), id)
}

// List returns entries in insertion order with offset/limit paging.
// A zero or negative limit means no limit.
func (s *DocumentService) List(ctx context.Context, source domain.SourceType, offset, limit int) ([]domain.IndexEntry, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, source)
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.Get(ctx, source.Collection(), nil)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Delete removes an entry from the collection.
func (s *DocumentService) Delete(ctx context.Context, source domain.SourceType, id string) error {
	if !source.Valid() {
		return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, source)
	}
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, source.Collection(), id); err != nil {
		return err
	}
	logger.Info("Deleted entry %s from %s", id, source.Collection())
	return nil
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
	"github.com/custodia-labs/curio/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline: validate, fingerprint,
// dedup check, embed, persist.
//
// The dedup-then-insert sequence is a check-then-act race under
// concurrency, so inserts are serialised per content fingerprint: two
// concurrent ingests of identical content cannot both pass the gate.
type IngestService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService

	hashLocks keyedMutex
}

// NewIngestService creates a new ingestion service.
func NewIngestService(store driven.VectorStore, embedder driven.EmbeddingService) *IngestService {
	return &IngestService{
		store:    store,
		embedder: embedder,
	}
}

// Ingest runs the pipeline for one item. Byte-identical content is
// idempotent: the second ingest returns the first entry's ID without
// inserting anything.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestReceipt, error) {
	logger.Section("Ingestion")

	if err := validateIngest(req); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	collection := req.SourceType.Collection()
	content := domain.NormalizeContent(req.Content)
	hash := domain.Fingerprint(content)
	logger.Debug("Collection: %s, fingerprint: %s", collection, hash[:12])

	// Serialise the dedup-then-insert window for this fingerprint.
	unlock := s.hashLocks.lock(hash)
	defer unlock()

	// Dedup gate. A lookup failure is fail-open: proceed to insert and
	// accept the duplicate risk rather than rejecting the ingestion.
	existing, err := s.store.Get(ctx, collection, map[string]string{domain.MetaContentHash: hash})
	if err != nil {
		logger.Warn("Dedup lookup failed, proceeding without dedup: %v", err)
	} else if len(existing) > 0 {
		logger.Info("Duplicate content, reusing entry %s", existing[0].ID)
		return &driving.IngestReceipt{
			ID:           existing[0].ID,
			ContentHash:  hash,
			Deduplicated: true,
		}, nil
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	logger.Debug("Embedded %d dimensions", len(embedding))

	// The content hash is derived here, never caller-supplied.
	metadata := make(map[string]string, len(req.Metadata)+1)
	for key, value := range req.Metadata {
		metadata[key] = value
	}
	metadata[domain.MetaContentHash] = hash

	entry := domain.IndexEntry{
		ID:         id,
		Title:      req.Title,
		Content:    content,
		SourceType: req.SourceType,
		Metadata:   metadata,
		Embedding:  embedding,
	}
	if err := s.store.Upsert(ctx, collection, []domain.IndexEntry{entry}); err != nil {
		// Embedding succeeded but persistence failed: the ingestion as
		// a whole fails, no partial entry is reported as indexed.
		return nil, fmt.Errorf("persist entry: %w", err)
	}

	logger.Info("Ingested entry %s into %s", id, collection)
	return &driving.IngestReceipt{
		ID:          id,
		ContentHash: hash,
	}, nil
}

// validateIngest rejects malformed input before any side effect.
func validateIngest(req driving.IngestRequest) error {
	if !req.SourceType.Valid() {
		return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, req.SourceType)
	}
	if domain.NormalizeContent(req.Content) == "" && req.ID == "" {
		return fmt.Errorf("%w: content and reference id both empty", domain.ErrInvalidInput)
	}
	return nil
}

// keyedMutex provides an exclusive section per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refLock)
	}
	l := k.locks[key]
	if l == nil {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

package mcp

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
)

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	resp        *domain.QueryResponse
	err         error
	lastSource  domain.SourceType
	lastQuery   string
	lastOpts    domain.QueryOptions
	invalidated []domain.SourceType
}

func (m *mockQueryService) Query(_ context.Context, source domain.SourceType, query string, opts domain.QueryOptions) (*domain.QueryResponse, error) {
	m.lastSource = source
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.QueryResponse{}, nil
	}
	return m.resp, nil
}

func (m *mockQueryService) Invalidate(source domain.SourceType) {
	m.invalidated = append(m.invalidated, source)
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	receipt *driving.IngestReceipt
	err     error
	lastReq driving.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestReceipt, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.receipt, nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	entries []domain.IndexEntry
	err     error
}

func (m *mockDocumentService) Get(_ context.Context, _ domain.SourceType, id string) (*domain.IndexEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context, _ domain.SourceType, offset, limit int) ([]domain.IndexEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.entries) {
		return nil, nil
	}
	entries := m.entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ domain.SourceType, _ string) error {
	return m.err
}

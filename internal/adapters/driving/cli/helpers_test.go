package cli

import (
	"context"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
)

// --- Mock implementations ---

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
	if m.receipt == nil {
		return &driving.IngestReceipt{ID: "test-id", ContentHash: "cafe0123cafe"}, nil
	}
	return m.receipt, nil
}

type mockDocumentService struct {
	entries []domain.IndexEntry
	err     error
	deleted []string
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

func (m *mockDocumentService) Delete(_ context.Context, _ domain.SourceType, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type mockFetcher struct {
	item *domain.SourceItem
	err  error
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (*domain.SourceItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

// --- Test helpers ---

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	query    *mockQueryService
	ingest   *mockIngestService
	document *mockDocumentService
}

// setupTestServices installs mock services so commands run without
// wiring real adapters. The returned cleanup restores the globals.
func setupTestServices() (*testServices, func()) {
	mocks := &testServices{
		query:    &mockQueryService{},
		ingest:   &mockIngestService{},
		document: &mockDocumentService{},
	}

	queryService = mocks.query
	ingestService = mocks.ingest
	documentService = mocks.document
	fetchers = map[domain.SourceType]driven.Fetcher{}

	return mocks, func() {
		queryService = nil
		ingestService = nil
		documentService = nil
		fetchers = nil
	}
}

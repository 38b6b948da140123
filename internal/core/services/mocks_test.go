package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts found in byText embed to their mapped vector; everything else
// embeds to fallback.
type mockEmbeddingService struct {
	byText   map[string][]float32
	fallback []float32
	embedErr error
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.byText[text]; ok {
		return v, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing. RewriteQuery
// echoes the input unless rewrite or rewriteErr is set.
type mockLLMService struct {
	answer    string
	answerErr error
	calls     int

	rewrite      string
	rewriteErr   error
	rewriteCalls int
}

func (m *mockLLMService) Answer(_ context.Context, _ string, _ []string) (string, error) {
	m.calls++
	if m.answerErr != nil {
		return "", m.answerErr
	}
	return m.answer, nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, query string) (string, error) {
	m.rewriteCalls++
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewrite != "" {
		return m.rewrite, nil
	}
	return query, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	results   []driven.RerankResult
	rerankErr error
}

func (m *mockReranker) Rerank(_ context.Context, _ string, _ []driven.RerankCandidate) ([]driven.RerankResult, error) {
	if m.rerankErr != nil {
		return nil, m.rerankErr
	}
	return m.results, nil
}

func (m *mockReranker) ModelName() string {
	return "mock-rerank"
}

// faultyStore wraps a real store and injects failures per operation.
type faultyStore struct {
	driven.VectorStore

	getErr    error
	queryErr  error
	upsertErr error
}

func (f *faultyStore) Get(ctx context.Context, name string, filter map[string]string) ([]domain.IndexEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.VectorStore.Get(ctx, name, filter)
}

func (f *faultyStore) Query(ctx context.Context, name string, embedding []float32, k int) ([]driven.VectorHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorStore.Query(ctx, name, embedding, k)
}

func (f *faultyStore) Upsert(ctx context.Context, name string, entries []domain.IndexEntry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorStore.Upsert(ctx, name, entries)
}

var errBackendDown = errors.New("backend down")

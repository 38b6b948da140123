package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curio/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	req := &mcp.ReadResourceRequest{}
	req.Params = &mcp.ReadResourceParams{URI: uri}
	return req
}

func TestServer_handleCollectionsResource(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)

	result, err := server.handleCollectionsResource(context.Background(), readRequest(uriScheme+"collections"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `"ticket"`)
	assert.Contains(t, result.Contents[0].Text, `"wiki"`)
}

func TestServer_handleEntriesResource(t *testing.T) {
	docs := &mockDocumentService{entries: []domain.IndexEntry{
		{ID: "AUTH-1", Title: "SSO login failure"},
		{ID: "PAY-2", Title: "Webhook timeout"},
	}}
	server, err := NewServer(&Ports{Query: &mockQueryService{}, Document: docs})
	require.NoError(t, err)

	result, err := server.handleEntriesResource(context.Background(), readRequest(uriScheme+"ticket/entries"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "AUTH-1")
	assert.Contains(t, result.Contents[0].Text, "Webhook timeout")
}

func TestServer_handleEntryContentResource(t *testing.T) {
	docs := &mockDocumentService{entries: []domain.IndexEntry{
		{ID: "AUTH-1", Title: "SSO login failure", Content: "Login fails with 500"},
	}}
	server, err := NewServer(&Ports{Query: &mockQueryService{}, Document: docs})
	require.NoError(t, err)

	result, err := server.handleEntryContentResource(context.Background(), readRequest(uriScheme+"ticket/entries/AUTH-1"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	assert.Equal(t, "Login fails with 500", result.Contents[0].Text)

	_, err = server.handleEntryContentResource(context.Background(), readRequest(uriScheme+"ticket/entries/NOPE"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseResourceURI(t *testing.T) {
	source, id, err := parseResourceURI("curio://ticket/entries")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceTicket, source)
	assert.Empty(t, id)

	source, id, err = parseResourceURI("curio://qa/entries/7890")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceQA, source)
	assert.Equal(t, "7890", id)

	_, _, err = parseResourceURI("curio://carrier_pigeon/entries")
	assert.Error(t, err)

	_, _, err = parseResourceURI("other://ticket/entries")
	assert.Error(t, err)

	_, _, err = parseResourceURI("curio://ticket/nope")
	assert.Error(t, err)
}

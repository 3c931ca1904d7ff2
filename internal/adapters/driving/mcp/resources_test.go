package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

func TestExtractNCTID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid trial URI",
			uri:      "trials://trials/NCT01234567",
			expected: "NCT01234567",
		},
		{
			name:     "invalid prefix",
			uri:      "file://trials/NCT01234567",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "trials://trials/NCT01234567/locations",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractNCTID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleToolsResource(t *testing.T) {
	server := newTestServer(t, &mockTrialsAPI{})

	result, err := server.handleToolsResource(context.Background(), readRequest("trials://tools"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &tools))
	require.Len(t, tools, 3)
	assert.Equal(t, "search_trials", tools[0]["name"])
	assert.NotNil(t, tools[0]["input_schema"])
}

func TestServer_handleTrialResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{
			trial: domain.TrialRecord{NCTID: "NCT01234567", Title: "Asthma study"},
		})

		result, err := server.handleTrialResource(ctx, readRequest("trials://trials/NCT01234567"))

		require.NoError(t, err)
		var rec domain.TrialRecord
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &rec))
		assert.Equal(t, "Asthma study", rec.Title)
	})

	t.Run("unknown study is not found", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{trial: domain.TrialRecord{NCTID: "NCT01234567"}})

		_, err := server.handleTrialResource(ctx, readRequest("trials://trials/NCT99999999"))

		require.Error(t, err)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{})

		_, err := server.handleTrialResource(ctx, readRequest("trials://trials/banana"))

		require.Error(t, err)
	})

	t.Run("upstream failure", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{err: &domain.FetchError{StatusCode: 503, Err: errors.New("unavailable")}})

		_, err := server.handleTrialResource(ctx, readRequest("trials://trials/NCT01234567"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  *domain.ToolError
		want bool
	}{
		{"fetch 404", &domain.ToolError{Kind: domain.KindFetch, Message: "no such study", Status: 404}, true},
		{"fetch 503", &domain.ToolError{Kind: domain.KindFetch, Message: "status 404 in body", Status: 503}, false},
		{"fetch without response", &domain.ToolError{Kind: domain.KindFetch, Message: "status 404"}, false},
		{"other kind", &domain.ToolError{Kind: domain.KindInternal, Status: 404}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

func TestServer_ReadResource_InMemory(t *testing.T) {
	server := newTestServer(t, &mockTrialsAPI{
		trial: domain.TrialRecord{NCTID: "NCT01234567", Title: "Asthma study"},
	})
	cs := connectInMemory(t, server)

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "trials://trials/NCT01234567"})

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, "Asthma study")
}

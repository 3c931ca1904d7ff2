package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

func TestNewChatModel(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewChatModel(Config{})
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		m, err := NewChatModel(Config{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, m.ModelName())
		assert.Equal(t, DefaultBaseURL, m.baseURL)
		assert.Equal(t, DefaultTimeout, m.client.Timeout)
		assert.NoError(t, m.Close())
	})
}

func TestChatModel_Complete_ToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
		  "choices": [{
		    "finish_reason": "tool_calls",
		    "message": {
		      "role": "assistant",
		      "content": null,
		      "tool_calls": [{
		        "id": "call_abc",
		        "type": "function",
		        "function": {"name": "search_trials", "arguments": "{\"condition\":\"diabetes\"}"}
		      }]
		    }
		  }]
		}`))
	}))
	defer srv.Close()

	m, err := NewChatModel(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-test"})
	require.NoError(t, err)

	tools := []driven.ToolDefinition{{
		Name:        "search_trials",
		Description: "Search",
		Parameters:  json.RawMessage(`{"type":"object"}`),
	}}
	history := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "find diabetes trials"},
		{Role: domain.RoleAssistant, ToolCalls: []domain.FunctionCall{{ID: "call_0", Name: "count_trials", Arguments: "{}"}}},
		{Role: domain.RoleTool, ToolCallID: "call_0", Name: "count_trials", Content: "42"},
	}

	reply, err := m.Complete(context.Background(), history, tools)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Empty(t, reply.Content)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "call_abc", reply.ToolCalls[0].ID)
	assert.Equal(t, "search_trials", reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"condition":"diabetes"}`, reply.ToolCalls[0].Arguments)

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, "auto", got["tool_choice"])
	toolsSent := got["tools"].([]any)
	require.Len(t, toolsSent, 1)
	fn := toolsSent[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "search_trials", fn["name"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 4)
	assistant := msgs[2].(map[string]any)
	assert.Nil(t, assistant["content"])
	assert.Len(t, assistant["tool_calls"], 1)
	toolMsg := msgs[3].(map[string]any)
	assert.Equal(t, "call_0", toolMsg["tool_call_id"])
	assert.Equal(t, "42", toolMsg["content"])
}

func TestChatModel_Complete_TextAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.NotContains(t, req, "tools")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"There are 3 trials."}}]}`))
	}))
	defer srv.Close()

	m, err := NewChatModel(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	reply, err := m.Complete(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, "There are 3 trials.", reply.Content)
	assert.Empty(t, reply.ToolCalls)
}

func TestChatModel_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error object", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`, "openai error: bad key"},
		{"non-json error", http.StatusBadGateway, `upstream down`, "status 502"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no response choices"},
		{"malformed ok body", http.StatusOK, `{"choices":`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, err := NewChatModel(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = m.Complete(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

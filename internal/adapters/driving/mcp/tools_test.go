package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

func callRequest(name, args string, meta mcp.Meta) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Meta:      meta,
		Name:      name,
		Arguments: json.RawMessage(args),
	}}
}

func structured(t *testing.T, res *mcp.CallToolResult) domain.ToolResult {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out domain.ToolResult
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestServer_toolHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{page: testPage()})

		res, err := server.toolHandler("search_trials")(ctx,
			callRequest("search_trials", `{"condition":"diabetes","status":"recruiting"}`, mcp.Meta{MetaInvocationID: "inv-1"}))

		require.NoError(t, err)
		assert.False(t, res.IsError)
		require.Len(t, res.Content, 1)
		assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "NCT00000001")

		out := structured(t, res)
		assert.Equal(t, "inv-1", out.CallID)
		assert.Equal(t, "search_trials", out.Tool)
		require.NotNil(t, out.Page)
		assert.Equal(t, domain.StatusRecruiting, out.Page.Trials[0].Status)
	})

	t.Run("mints invocation id", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{count: 3})

		res, err := server.toolHandler("count_trials")(ctx, callRequest("count_trials", `{"condition":"flu"}`, nil))

		require.NoError(t, err)
		assert.Len(t, structured(t, res).CallID, 36)
	})

	t.Run("malformed arguments are a schema error", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{})

		res, err := server.toolHandler("search_trials")(ctx, callRequest("search_trials", `{"condition":`, nil))

		require.NoError(t, err)
		assert.True(t, res.IsError)
		out := structured(t, res)
		require.NotNil(t, out.Error)
		assert.Equal(t, domain.KindSchema, out.Error.Kind)
		assert.Equal(t, "arguments", out.Error.Fields[0].Field)
	})

	t.Run("validation failure is a result not a protocol error", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{})

		res, err := server.toolHandler("search_trials")(ctx, callRequest("search_trials", `{"condition":"  "}`, nil))

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, domain.KindValidation, structured(t, res).Error.Kind)
		assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "Error (validation_error)")
	})

	t.Run("fetch failure", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{err: &domain.FetchError{Err: errors.New("connection refused")}})

		res, err := server.toolHandler("search_trials")(ctx, callRequest("search_trials", `{"condition":"diabetes"}`, nil))

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, domain.KindFetch, structured(t, res).Error.Kind)
	})

	t.Run("empty arguments", func(t *testing.T) {
		server := newTestServer(t, &mockTrialsAPI{})

		res, err := server.toolHandler("get_trial_details")(ctx, callRequest("get_trial_details", ``, nil))

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, []domain.FieldError{{Field: "nct_id", Reason: "is required"}}, structured(t, res).Error.Fields)
	})
}

func connectInMemory(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_InMemorySession(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockTrialsAPI{
		page:  testPage(),
		trial: domain.TrialRecord{NCTID: "NCT00000001", Title: "Metformin in Type 2 Diabetes"},
	})
	cs := connectInMemory(t, server)

	t.Run("lists tools with schemas", func(t *testing.T) {
		res, err := cs.ListTools(ctx, nil)
		require.NoError(t, err)
		require.Len(t, res.Tools, 3)

		names := []string{res.Tools[0].Name, res.Tools[1].Name, res.Tools[2].Name}
		assert.ElementsMatch(t, []string{"search_trials", "get_trial_details", "count_trials"}, names)
		for _, tool := range res.Tools {
			assert.NotNil(t, tool.InputSchema)
		}
	})

	t.Run("search then details", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Meta:      mcp.Meta{MetaInvocationID: "inv-search"},
			Name:      "search_trials",
			Arguments: map[string]any{"condition": "diabetes", "status": "recruiting"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		out := structured(t, res)
		assert.Equal(t, "inv-search", out.CallID)
		require.Len(t, out.Page.Trials, 1)

		res, err = cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "get_trial_details",
			Arguments: map[string]any{"nct_id": out.Page.Trials[0].NCTID},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, "Metformin in Type 2 Diabetes", structured(t, res).Trial.Title)
	})

	t.Run("undeclared argument", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "count_trials",
			Arguments: map[string]any{"condition": "diabetes", "color": "red"},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		out := structured(t, res)
		assert.Equal(t, domain.KindSchema, out.Error.Kind)
		assert.Equal(t, "color", out.Error.Fields[0].Field)
	})

	t.Run("unknown tool is a protocol error", func(t *testing.T) {
		_, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "drop_trials"})
		assert.Error(t, err)
	})

	// Every ticket, including the rejected call's, is answered.
	require.Eventually(t, func() bool { return server.orders.outstanding() == 0 }, time.Second, time.Millisecond)
}

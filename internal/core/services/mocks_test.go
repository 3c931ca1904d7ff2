package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockTrialsAPI implements driven.TrialsAPI for testing.
type mockTrialsAPI struct {
	mu       sync.Mutex
	page     domain.TrialPage
	trial    domain.TrialRecord
	count    int
	err      error
	queries  []domain.TrialQuery
	getCalls []string
}

func (m *mockTrialsAPI) Search(_ context.Context, q domain.TrialQuery) (domain.TrialPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return domain.TrialPage{}, m.err
	}
	return m.page, nil
}

func (m *mockTrialsAPI) Get(_ context.Context, nctID string) (domain.TrialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, nctID)
	if m.err != nil {
		return domain.TrialRecord{}, m.err
	}
	return m.trial, nil
}

func (m *mockTrialsAPI) Count(_ context.Context, q domain.TrialQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func (m *mockTrialsAPI) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries) + len(m.getCalls)
}

// mockChatModel implements driven.ChatModel by replaying scripted replies.
type mockChatModel struct {
	replies  []domain.ChatMessage
	err      error
	requests [][]domain.ChatMessage
	tools    []driven.ToolDefinition
}

func (m *mockChatModel) Complete(
	_ context.Context,
	messages []domain.ChatMessage,
	tools []driven.ToolDefinition,
) (domain.ChatMessage, error) {
	m.requests = append(m.requests, append([]domain.ChatMessage(nil), messages...))
	m.tools = tools
	if m.err != nil {
		return domain.ChatMessage{}, m.err
	}
	if len(m.replies) == 0 {
		return domain.ChatMessage{Role: domain.RoleAssistant, Content: "done"}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *mockChatModel) ModelName() string { return "mock" }

func (m *mockChatModel) Close() error { return nil }

// recordingInvoker implements driving.ToolInvoker and records calls.
type recordingInvoker struct {
	calls  []domain.ToolCall
	result domain.ToolResult
}

func (r *recordingInvoker) Tools(_ context.Context) ([]domain.ToolDescriptor, error) {
	return nil, nil
}

func (r *recordingInvoker) Invoke(_ context.Context, call domain.ToolCall) domain.ToolResult {
	r.calls = append(r.calls, call)
	out := r.result
	out.CallID = "remote-" + call.ID
	out.Tool = call.Name
	return out
}

func diabetesPage() domain.TrialPage {
	return domain.TrialPage{
		TotalCount:    2,
		NextPageToken: "tok2",
		Trials: []domain.TrialRecord{
			{
				NCTID:      "NCT00000001",
				Title:      "Metformin in Type 2 Diabetes",
				Status:     domain.StatusRecruiting,
				Phases:     []domain.Phase{domain.Phase3},
				Enrollment: 120,
				Summary:    "A study of metformin.",
			},
			{
				NCTID:  "NCT00000002",
				Title:  "Insulin Pump Trial",
				Status: domain.StatusRecruiting,
			},
		},
	}
}

func newTrialRegistry(t *testing.T, api driven.TrialsAPI) *ToolRegistry {
	t.Helper()
	r, err := NewToolRegistry(TrialTools(api)...)
	require.NoError(t, err)
	return r
}

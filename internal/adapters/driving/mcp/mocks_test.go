package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
)

// mockTrialsAPI is a mock implementation of driven.TrialsAPI.
type mockTrialsAPI struct {
	page  domain.TrialPage
	trial domain.TrialRecord
	count int
	err   error

	// searchHook, when set, runs inside Search before it returns.
	searchHook func(ctx context.Context, q domain.TrialQuery)
}

func (m *mockTrialsAPI) Search(ctx context.Context, q domain.TrialQuery) (domain.TrialPage, error) {
	if m.searchHook != nil {
		m.searchHook(ctx, q)
	}
	if err := ctx.Err(); err != nil {
		return domain.TrialPage{}, &domain.FetchError{Err: err}
	}
	return m.page, m.err
}

func (m *mockTrialsAPI) Get(_ context.Context, nctID string) (domain.TrialRecord, error) {
	if m.err != nil {
		return domain.TrialRecord{}, m.err
	}
	id, err := domain.ParseNCTID(nctID)
	if err != nil {
		return domain.TrialRecord{}, err
	}
	if id != m.trial.NCTID {
		return domain.TrialRecord{}, &domain.FetchError{StatusCode: 404, Err: errors.New("not found")}
	}
	return m.trial, nil
}

func (m *mockTrialsAPI) Count(_ context.Context, _ domain.TrialQuery) (int, error) {
	return m.count, m.err
}

func testPage() domain.TrialPage {
	return domain.TrialPage{
		TotalCount: 1,
		Trials: []domain.TrialRecord{{
			NCTID:  "NCT00000001",
			Title:  "Metformin in Type 2 Diabetes",
			Status: domain.StatusRecruiting,
		}},
	}
}

func newTestServer(t *testing.T, api *mockTrialsAPI) *Server {
	t.Helper()
	registry, err := services.NewToolRegistry(services.TrialTools(api)...)
	require.NoError(t, err)
	server, err := NewServer(&Ports{Tools: registry})
	require.NoError(t, err)
	return server
}

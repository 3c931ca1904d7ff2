package driven

import (
	"context"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// TrialsAPI reads the public trial registry.
//
// Implementations validate their input before any network call and
// report transport or upstream failures as *domain.FetchError.
type TrialsAPI interface {
	// Search returns one page of studies matching the query.
	Search(ctx context.Context, query domain.TrialQuery) (domain.TrialPage, error)

	// Get returns a single study by NCT identifier.
	Get(ctx context.Context, nctID string) (domain.TrialRecord, error)

	// Count returns the number of studies matching the query.
	Count(ctx context.Context, query domain.TrialQuery) (int, error)
}

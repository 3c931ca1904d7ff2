package driving

import (
	"context"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// ToolInvoker runs declared tools.
type ToolInvoker interface {
	// Tools returns the declared tools in declaration order.
	Tools(ctx context.Context) ([]domain.ToolDescriptor, error)

	// Invoke resolves call to exactly one result. Failures are reported in
	// ToolResult.Error, never dropped.
	Invoke(ctx context.Context, call domain.ToolCall) domain.ToolResult
}

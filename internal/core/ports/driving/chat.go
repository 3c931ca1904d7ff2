package driving

import (
	"context"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// ChatService answers questions with a chat model that can call tools.
type ChatService interface {
	// Ask appends prompt to history, runs any requested tool calls, and
	// returns the final answer with the extended history.
	Ask(ctx context.Context, history []domain.ChatMessage, prompt string) (string, []domain.ChatMessage, error)
}

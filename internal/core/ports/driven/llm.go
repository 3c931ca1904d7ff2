package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// ChatModel is an OpenAI-compatible chat completion endpoint with
// function calling.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Azure OpenAI
//   - Any server speaking the /chat/completions wire format (Ollama, LM Studio, vLLM)
type ChatModel interface {
	// Complete sends the conversation and the callable tools, and returns the
	// assistant's next turn. The turn either has Content or ToolCalls.
	Complete(ctx context.Context, messages []domain.ChatMessage, tools []ToolDefinition) (domain.ChatMessage, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ToolDefinition declares a function the chat model may call.
type ToolDefinition struct {
	Name        string
	Description string

	// Parameters is a JSON Schema object describing the arguments.
	Parameters json.RawMessage
}

package domain

// Chat roles used in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// FunctionCall is an assistant's request to run a function.
// Arguments is the raw JSON object text produced by the model.
type FunctionCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is one turn of a conversation with a chat model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant turns that request function calls.
	ToolCalls []FunctionCall `json:"tool_calls,omitempty"`

	// ToolCallID and Name are set on tool turns answering a FunctionCall.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

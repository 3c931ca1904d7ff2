package driven

// Prompt names.
const (
	// PromptChatSystem is the system prompt of the chat command.
	PromptChatSystem = "chat_system"
)

// PromptStore provides user overrides for model prompts.
type PromptStore interface {
	// Load returns the override for name. The bool is false when the user
	// has not provided one.
	Load(name string) (string, bool, error)
}

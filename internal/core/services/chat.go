package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultMaxToolRounds bounds how many times the model may request tools
// before it must answer.
const DefaultMaxToolRounds = 5

// ErrToolRoundsExceeded is returned when the model keeps calling tools.
var ErrToolRoundsExceeded = errors.New("chat: model exceeded tool call rounds")

// DefaultSystemPrompt frames the model as a trial-search assistant.
const DefaultSystemPrompt = `You are a clinical research assistant with access to the ClinicalTrials.gov registry.

You can help users:
- Search for clinical trials by condition, location, recruitment status and phase
- Get the details of a specific trial by its NCT identifier
- Count how many trials are registered for a condition

Use the available tools to answer with accurate registry data. Always cite NCT identifiers for the trials you mention.`

// ChatService runs a conversation in which the model may call tools.
type ChatService struct {
	model         driven.ChatModel
	invoker       driving.ToolInvoker
	bridge        *Bridge
	systemPrompt  string
	maxToolRounds int
}

// NewChatService creates a chat service. The bridge must describe the same
// tools the invoker runs.
func NewChatService(model driven.ChatModel, invoker driving.ToolInvoker, bridge *Bridge) *ChatService {
	return &ChatService{
		model:         model,
		invoker:       invoker,
		bridge:        bridge,
		systemPrompt:  DefaultSystemPrompt,
		maxToolRounds: DefaultMaxToolRounds,
	}
}

// SetSystemPrompt replaces the default system prompt.
func (s *ChatService) SetSystemPrompt(prompt string) {
	s.systemPrompt = prompt
}

// SetMaxToolRounds changes how many tool rounds a single question may use.
func (s *ChatService) SetMaxToolRounds(n int) {
	if n > 0 {
		s.maxToolRounds = n
	}
}

// Ask appends prompt to history and drives the model until it answers.
// The system prompt is never stored in the returned history.
func (s *ChatService) Ask(ctx context.Context, history []domain.ChatMessage, prompt string) (string, []domain.ChatMessage, error) {
	if s.model == nil {
		return "", history, errors.New("chat: no chat model configured")
	}

	history = append(history, domain.ChatMessage{Role: domain.RoleUser, Content: prompt})
	defs := s.bridge.Definitions()

	for round := 0; round <= s.maxToolRounds; round++ {
		messages := make([]domain.ChatMessage, 0, len(history)+1)
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.systemPrompt})
		messages = append(messages, history...)

		reply, err := s.model.Complete(ctx, messages, defs)
		if err != nil {
			return "", history, fmt.Errorf("chat completion: %w", err)
		}
		reply.Role = domain.RoleAssistant
		history = append(history, reply)

		if len(reply.ToolCalls) == 0 {
			return reply.Content, history, nil
		}
		if round == s.maxToolRounds {
			break
		}

		for _, fc := range reply.ToolCalls {
			history = append(history, s.runFunctionCall(ctx, fc))
		}
	}

	return "", history, ErrToolRoundsExceeded
}

// runFunctionCall answers one function call. Translation failures are
// reported back to the model rather than aborting the conversation.
func (s *ChatService) runFunctionCall(ctx context.Context, fc domain.FunctionCall) domain.ChatMessage {
	logger.Info("chat: calling tool %s with %s", fc.Name, fc.Arguments)

	call, err := s.bridge.TranslateRequest(fc)
	if err != nil {
		logger.Warn("chat: %v", err)
		return s.bridge.TranslateResponse(domain.ErrorResult(domain.ToolCall{ID: fc.ID, Name: fc.Name}, err))
	}

	result := s.invoker.Invoke(ctx, call)
	// The invoker may be remote; the model only accepts its own call id back.
	result.CallID = fc.ID
	return s.bridge.TranslateResponse(result)
}

// Package openai provides a ChatModel adapter for OpenAI-compatible
// /chat/completions endpoints with function calling.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI chat model.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// ChatModel calls an OpenAI-compatible chat completions API.
type ChatModel struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model      string              `json:"model"`
	Messages   []chatCompletionMsg `json:"messages"`
	Tools      []toolSpec          `json:"tools,omitempty"`
	ToolChoice string              `json:"tool_choice,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message      chatCompletionMsg `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewChatModel creates a new OpenAI chat model.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ChatModel{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete sends the conversation and tools and returns the assistant turn.
func (m *ChatModel) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	tools []driven.ToolDefinition,
) (domain.ChatMessage, error) {
	reqBody := chatCompletionRequest{
		Model:    m.model,
		Messages: make([]chatCompletionMsg, len(messages)),
	}
	for i, msg := range messages {
		reqBody.Messages[i] = toWire(msg)
	}
	if len(tools) > 0 {
		reqBody.ToolChoice = "auto"
		for _, t := range tools {
			reqBody.Tools = append(reqBody.Tools, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return domain.ChatMessage{}, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
		}
		return domain.ChatMessage{}, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return domain.ChatMessage{}, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.ChatMessage{}, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return domain.ChatMessage{}, fmt.Errorf("openai: no response choices returned")
	}

	return fromWire(chatResp.Choices[0].Message), nil
}

func toWire(msg domain.ChatMessage) chatCompletionMsg {
	out := chatCompletionMsg{
		Role:       msg.Role,
		ToolCallID: msg.ToolCallID,
		Name:       msg.Name,
	}
	// Assistant turns that only call tools carry a null content.
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		content := msg.Content
		out.Content = &content
	}
	for _, fc := range msg.ToolCalls {
		tc := toolCall{ID: fc.ID, Type: "function"}
		tc.Function.Name = fc.Name
		tc.Function.Arguments = fc.Arguments
		out.ToolCalls = append(out.ToolCalls, tc)
	}
	return out
}

func fromWire(msg chatCompletionMsg) domain.ChatMessage {
	out := domain.ChatMessage{Role: msg.Role}
	if msg.Content != nil {
		out.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

// ModelName returns the name of the chat model being used.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Close releases resources.
func (m *ChatModel) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// Bridge maps between OpenAI-style function calling and tool calls.
// It holds no mutable state; every method is a pure mapping.
type Bridge struct {
	tools []domain.ToolDescriptor
	index map[string]int
}

// NewBridge creates a bridge over the declared tools.
func NewBridge(tools []domain.ToolDescriptor) *Bridge {
	b := &Bridge{
		tools: tools,
		index: make(map[string]int, len(tools)),
	}
	for i, t := range tools {
		b.index[t.Name] = i
	}
	return b
}

// Definitions returns the function declarations to advertise to the model.
func (b *Bridge) Definitions() []driven.ToolDefinition {
	defs := make([]driven.ToolDefinition, 0, len(b.tools))
	for _, t := range b.tools {
		params, err := json.Marshal(JSONSchema(t.Schema))
		if err != nil {
			// A schema built from FieldSpecs always marshals.
			panic(fmt.Sprintf("bridge: marshal schema for %q: %v", t.Name, err))
		}
		defs = append(defs, driven.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return defs
}

// TranslateRequest turns an assistant function call into a tool call.
// The function call id becomes the invocation id.
func (b *Bridge) TranslateRequest(fc domain.FunctionCall) (domain.ToolCall, error) {
	i, ok := b.index[fc.Name]
	if !ok {
		return domain.ToolCall{}, &domain.TranslationError{
			Function: fc.Name,
			Err:      &domain.UnknownToolError{Name: fc.Name},
		}
	}
	tool := b.tools[i]

	args, err := DecodeArguments(fc.Arguments)
	if err != nil {
		return domain.ToolCall{}, &domain.TranslationError{Function: fc.Name, Err: err}
	}
	if err := tool.Schema.Validate(tool.Name, args); err != nil {
		return domain.ToolCall{}, &domain.TranslationError{Function: fc.Name, Err: err}
	}

	return domain.ToolCall{ID: fc.ID, Name: tool.Name, Arguments: args}, nil
}

// TranslateResponse turns a tool result into the tool message answering
// the originating function call.
func (b *Bridge) TranslateResponse(r domain.ToolResult) domain.ChatMessage {
	return domain.ChatMessage{
		Role:       domain.RoleTool,
		ToolCallID: r.CallID,
		Name:       r.Tool,
		Content:    RenderResult(r),
	}
}

// DecodeArguments parses JSON argument text. Empty text or null means no
// arguments; anything other than a JSON object is rejected.
func DecodeArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if dec.More() {
		return nil, errors.New("arguments contain trailing data")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

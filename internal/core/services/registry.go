package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// Ensure ToolRegistry implements the interface.
var _ driving.ToolInvoker = (*ToolRegistry)(nil)

// ToolHandler runs a tool whose arguments already passed the schema check.
// It fills the payload fields of the result; the registry sets CallID and Tool.
type ToolHandler func(ctx context.Context, args map[string]any) (domain.ToolResult, error)

// Tool is a declared tool with its implementation.
type Tool struct {
	domain.ToolDescriptor
	Handler ToolHandler
}

// ToolRegistry is the set of callable tools. It is built once and never
// mutated, so it is safe for concurrent use without locking.
type ToolRegistry struct {
	tools []Tool
	index map[string]int
}

// NewToolRegistry builds a registry. Tool names must be unique and non-empty,
// and every tool needs a handler.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{
		tools: make([]Tool, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("registry: tool with empty name")
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("registry: tool %q has no handler", t.Name)
		}
		if _, dup := r.index[t.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate tool %q", t.Name)
		}
		r.index[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// Tools returns the declared tools in declaration order.
func (r *ToolRegistry) Tools(_ context.Context) ([]domain.ToolDescriptor, error) {
	return r.Descriptors(), nil
}

// Descriptors returns the declared tools in declaration order.
func (r *ToolRegistry) Descriptors() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, len(r.tools))
	for i := range r.tools {
		out[i] = r.tools[i].ToolDescriptor
	}
	return out
}

// Lookup returns the descriptor for name.
func (r *ToolRegistry) Lookup(name string) (domain.ToolDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return domain.ToolDescriptor{}, false
	}
	return r.tools[i].ToolDescriptor, true
}

// Invoke resolves call to exactly one result. It never returns without a
// result: unknown tools, schema failures, handler errors and handler panics
// all become ToolResult.Error.
func (r *ToolRegistry) Invoke(ctx context.Context, call domain.ToolCall) (result domain.ToolResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			logger.Error("registry: tool %q panicked: %v", call.Name, p)
			result = domain.ErrorResult(call, fmt.Errorf("tool %q panicked: %v", call.Name, p))
		}
		logger.Debug("registry: %s id=%s failed=%t in %s", call.Name, call.ID, result.Failed(), time.Since(start))
	}()

	i, ok := r.index[call.Name]
	if !ok {
		return domain.ErrorResult(call, &domain.UnknownToolError{Name: call.Name})
	}
	tool := r.tools[i]

	if err := tool.Schema.Validate(tool.Name, call.Arguments); err != nil {
		return domain.ErrorResult(call, err)
	}

	out, err := tool.Handler(ctx, call.Arguments)
	if err != nil {
		return domain.ErrorResult(call, err)
	}
	out.CallID = call.ID
	out.Tool = call.Name
	out.Error = nil
	return out
}

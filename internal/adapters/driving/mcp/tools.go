package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// MetaInvocationID is the _meta key a client may set to correlate a call
// with its result. When absent the server mints one.
const MetaInvocationID = "invocationId"

// registerTools publishes every registry tool with its input schema.
func (s *Server) registerTools() {
	for _, t := range s.tools {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: services.JSONSchema(t.Schema),
		}, s.toolHandler(t.Name))
	}
}

// toolHandler adapts one registry tool to the MCP call protocol. Tool
// failures are reported in the result, never as protocol errors.
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call := domain.ToolCall{ID: invocationID(req), Name: name}

		if err := s.awaitTurn(ctx, req); err != nil {
			logger.Warn("mcp: %s id=%s: %v", name, call.ID, err)
			return toCallToolResult(domain.ErrorResult(call, err)), nil
		}

		var raw string
		if req != nil && req.Params != nil {
			raw = string(req.Params.Arguments)
		}
		args, err := services.DecodeArguments(raw)
		if err != nil {
			logger.Warn("mcp: %s id=%s: %v", name, call.ID, err)
			return toCallToolResult(domain.ErrorResult(call, &domain.SchemaError{
				Tool:   name,
				Fields: []domain.FieldError{{Field: "arguments", Reason: "must be a JSON object"}},
			})), nil
		}
		call.Arguments = args

		return toCallToolResult(s.ports.Tools.Invoke(ctx, call)), nil
	}
}

// toCallToolResult carries the rendered text for humans and the wire
// result for programs.
func toCallToolResult(r domain.ToolResult) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: services.RenderResult(r)}},
		StructuredContent: r,
		IsError:           r.Failed(),
	}
}

func invocationID(req *mcp.CallToolRequest) string {
	if req != nil && req.Params != nil {
		if id, ok := req.Params.Meta[MetaInvocationID].(string); ok && id != "" {
			return id
		}
	}
	return uuid.NewString()
}

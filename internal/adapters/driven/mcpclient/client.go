// Package mcpclient invokes tools hosted by a remote MCP server, so the chat
// bridge and the client driver can run against a server on another host.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// Ensure Client implements the interface.
var _ driving.ToolInvoker = (*Client)(nil)

// Version is reported to servers during the handshake.
const Version = "0.1.0"

// metaInvocationID matches the key the server reads from _meta.
const metaInvocationID = "invocationId"

// codeInvalidParams is the JSON-RPC code servers use to reject a call to
// an undeclared tool.
const codeInvalidParams = -32602

// Client is one MCP client session.
type Client struct {
	session *mcp.ClientSession
}

// Dial connects to a streamable HTTP MCP endpoint such as
// http://localhost:3000/mcp.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("mcpclient: endpoint is required")
	}
	c, err := Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	logger.Debug("mcpclient: connected to %s", endpoint)
	return c, nil
}

// Connect starts a session over any MCP transport.
func Connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "trials-mcp-client", Version: Version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}
	return &Client{session: session}, nil
}

// Tools lists the remote tools, reading their input schemas back into
// argument contracts.
func (c *Client) Tools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	var out []domain.ToolDescriptor
	params := &mcp.ListToolsParams{}
	for {
		res, err := c.session.ListTools(ctx, params)
		if err != nil {
			return nil, &domain.FetchError{Err: fmt.Errorf("list tools: %w", err)}
		}
		for _, t := range res.Tools {
			schema, err := services.SchemaFromJSON(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("tool %q: %w", t.Name, err)
			}
			out = append(out, domain.ToolDescriptor{
				Name:        t.Name,
				Description: t.Description,
				Schema:      schema,
			})
		}
		if res.NextCursor == "" {
			return out, nil
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}
}

// Invoke calls a remote tool. A rejected tool name becomes an unknown_tool
// result and other transport failures become fetch errors; the call ID
// travels as _meta.invocationId.
func (c *Client) Invoke(ctx context.Context, call domain.ToolCall) domain.ToolResult {
	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Meta:      mcp.Meta{metaInvocationID: call.ID},
		Name:      call.Name,
		Arguments: args,
	})
	if err != nil {
		logger.Warn("mcpclient: %s id=%s: %v", call.Name, call.ID, err)
		return domain.ErrorResult(call, callError(call.Name, err))
	}
	return decodeResult(call, res)
}

// callError classifies an error returned by CallTool.
func callError(name string, err error) error {
	var wireErr *jsonrpc.Error
	if errors.As(err, &wireErr) && wireErr.Code == codeInvalidParams &&
		strings.HasPrefix(wireErr.Message, "unknown tool") {
		return &domain.UnknownToolError{Name: name}
	}
	return &domain.FetchError{Err: err}
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}

// decodeResult reads the structured result, falling back to the text
// content for servers that only send text.
func decodeResult(call domain.ToolCall, res *mcp.CallToolResult) domain.ToolResult {
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err == nil {
			var out domain.ToolResult
			if err := json.Unmarshal(raw, &out); err == nil {
				out.CallID = call.ID
				out.Tool = call.Name
				return out
			}
		}
	}

	text := textOf(res)
	if res.IsError {
		return domain.ToolResult{
			CallID: call.ID,
			Tool:   call.Name,
			Error:  &domain.ToolError{Kind: domain.KindInternal, Message: text},
		}
	}
	return domain.ErrorResult(call, fmt.Errorf("unexpected tool result: %s", text))
}

func textOf(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// Package mcp exposes the tool registry as a Model Context Protocol server,
// so MCP clients and AI assistants can search ClinicalTrials.gov.
package mcp

import "errors"

// ErrMissingToolRegistry is returned when no tool invoker is provided.
var ErrMissingToolRegistry = errors.New("mcp: tool registry is required")

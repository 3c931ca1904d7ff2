package mcp

import (
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Tools lists and runs the published tools.
	Tools driving.ToolInvoker
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Tools == nil {
		return ErrMissingToolRegistry
	}
	return nil
}

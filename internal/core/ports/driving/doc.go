// Package driving defines interfaces that external actors (MCP clients, CLI,
// chat models) use to interact with core services. These are the "driving"
// ports in hexagonal architecture terminology - they drive the application.
//
// Implementations of these interfaces live in internal/core/services, except
// for ToolInvoker, which is also implemented by the remote MCP client adapter.
package driving

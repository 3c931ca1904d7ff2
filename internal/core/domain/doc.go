// Package domain defines the core business entities for trials-mcp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TrialQuery: A validated search against the trial registry
//   - TrialRecord: A read-only projection of one registered study
//   - ToolCall / ToolResult: One tool invocation and its outcome
//   - Schema: The structural argument contract of a tool
//   - ChatMessage: An OpenAI-shaped conversation turn
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

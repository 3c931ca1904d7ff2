// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - ToolRegistry: the immutable set of callable tools, with schema checks
//   - TrialTools: the registry tools backed by a TrialsAPI
//   - Bridge: pure mapping between OpenAI function calls and tool calls
//   - ChatService: a chat model conversation that can call tools
//
// Services are pure Go with no CGO. The only external dependency is
// jsonschema-go, used to publish tool schemas.
package services

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy. Every typed error below
// matches exactly one of these with errors.Is.
var (
	// ErrValidation indicates a malformed domain input, such as an empty condition.
	ErrValidation = errors.New("validation failed")

	// ErrSchema indicates tool arguments that do not satisfy the tool's schema.
	ErrSchema = errors.New("schema mismatch")

	// ErrUnknownTool indicates a call naming a tool that was never declared.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrFetch indicates the trial registry was unreachable or answered with an error.
	ErrFetch = errors.New("fetch failed")

	// ErrTranslation indicates a function call that cannot be mapped onto a declared tool.
	ErrTranslation = errors.New("translation failed")
)

// ErrorKind classifies a failure for callers that only see a ToolResult.
type ErrorKind string

// Error kinds carried by ToolError.
const (
	KindValidation  ErrorKind = "validation_error"
	KindSchema      ErrorKind = "schema_error"
	KindUnknownTool ErrorKind = "unknown_tool"
	KindFetch       ErrorKind = "fetch_error"
	KindTranslation ErrorKind = "translation_error"
	KindInternal    ErrorKind = "internal_error"
)

// ValidationError reports a bad input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FieldError describes one argument that failed the schema check.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaError lists every argument that failed the schema check.
type SchemaError struct {
	Tool   string
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Tool, strings.Join(parts, "; "))
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// FieldNames returns the offending field names in order.
func (e *SchemaError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// UnknownToolError names a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Is reports whether target is ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// FetchError wraps a failed call to the trial registry.
// StatusCode is zero when no HTTP response was received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// TranslationError reports a function call that does not fit any declared tool.
type TranslationError struct {
	Function string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %q: %v", e.Function, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTranslation.
func (e *TranslationError) Is(target error) bool { return target == ErrTranslation }

// KindOf classifies err. Translation is checked first because a
// TranslationError usually wraps a SchemaError or UnknownToolError.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTranslation):
		return KindTranslation
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrSchema):
		return KindSchema
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrFetch):
		return KindFetch
	default:
		return KindInternal
	}
}

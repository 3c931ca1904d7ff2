package domain

import "errors"

// ToolDescriptor declares a callable tool and its argument contract.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      Schema
}

// ToolCall is one invocation of a tool. ID correlates the call with its result.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolError is the structured failure carried in a ToolResult.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	// Fields lists offending arguments for schema errors.
	Fields []FieldError `json:"fields,omitempty"`

	// Status is the registry's HTTP status for fetch errors, zero when no
	// response was received.
	Status int `json:"status,omitempty"`
}

// NewToolError converts err into its structured form.
func NewToolError(err error) *ToolError {
	te := &ToolError{Kind: KindOf(err), Message: err.Error()}
	var se *SchemaError
	if errors.As(err, &se) {
		te.Fields = se.Fields
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		te.Status = fe.StatusCode
	}
	return te
}

// ToolResult is the outcome of exactly one ToolCall. At most one of
// Page, Trial, Count or Error is set.
type ToolResult struct {
	CallID string `json:"call_id"`
	Tool   string `json:"tool"`

	Page  *TrialPage   `json:"page,omitempty"`
	Trial *TrialRecord `json:"trial,omitempty"`
	Count *int         `json:"count,omitempty"`

	Error *ToolError `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r ToolResult) Failed() bool { return r.Error != nil }

// ErrorResult builds a failed result for call.
func ErrorResult(call ToolCall, err error) ToolResult {
	return ToolResult{CallID: call.ID, Tool: call.Name, Error: NewToolError(err)}
}

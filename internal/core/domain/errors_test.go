package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrValidation", ErrValidation},
		{"ErrSchema", ErrSchema},
		{"ErrUnknownTool", ErrUnknownTool},
		{"ErrFetch", ErrFetch},
		{"ErrTranslation", ErrTranslation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     ErrorKind
	}{
		{"validation", &ValidationError{Field: "condition", Message: "must not be empty"}, ErrValidation, KindValidation},
		{"schema", &SchemaError{Tool: "search_trials", Fields: []FieldError{{Field: "condition", Reason: "is required"}}}, ErrSchema, KindSchema},
		{"unknown tool", &UnknownToolError{Name: "nope"}, ErrUnknownTool, KindUnknownTool},
		{"fetch", &FetchError{StatusCode: 503, Err: errors.New("unavailable")}, ErrFetch, KindFetch},
		{"translation", &TranslationError{Function: "nope", Err: &UnknownToolError{Name: "nope"}}, ErrTranslation, KindTranslation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(tt.err))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestKindOf_Internal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestTranslationError_UnwrapsCause(t *testing.T) {
	cause := &SchemaError{Tool: "search_trials", Fields: []FieldError{{Field: "page_size", Reason: "must be an integer"}}}
	err := &TranslationError{Function: "search_trials", Err: cause}

	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "search_trials")
	assert.Contains(t, err.Error(), "page_size must be an integer")
}

func TestFetchError_Message(t *testing.T) {
	withStatus := &FetchError{StatusCode: 404, Err: errors.New("not found")}
	assert.Equal(t, "fetch: status 404: not found", withStatus.Error())

	network := &FetchError{Err: errors.New("connection refused")}
	assert.Equal(t, "fetch: connection refused", network.Error())
}

func TestSchemaError_FieldNames(t *testing.T) {
	err := &SchemaError{Tool: "t", Fields: []FieldError{
		{Field: "a", Reason: "is required"},
		{Field: "b", Reason: "must be a string"},
	}}
	assert.Equal(t, []string{"a", "b"}, err.FieldNames())
	assert.Equal(t, "schema: t: a is required; b must be a string", err.Error())
}

func TestNewToolError_CarriesSchemaFields(t *testing.T) {
	err := fmt.Errorf("invoke: %w", &SchemaError{Tool: "t", Fields: []FieldError{{Field: "x", Reason: "is required"}}})

	te := NewToolError(err)

	assert.Equal(t, KindSchema, te.Kind)
	assert.Len(t, te.Fields, 1)
	assert.Equal(t, "x", te.Fields[0].Field)
}

func TestNewToolError_CarriesFetchStatus(t *testing.T) {
	te := NewToolError(fmt.Errorf("get: %w", &FetchError{StatusCode: 404, Err: errors.New("no such study")}))

	assert.Equal(t, KindFetch, te.Kind)
	assert.Equal(t, 404, te.Status)

	te = NewToolError(&FetchError{Err: errors.New("connection refused")})
	assert.Zero(t, te.Status)

	te = NewToolError(&ValidationError{Field: "nct_id", Message: "bad"})
	assert.Zero(t, te.Status)
}

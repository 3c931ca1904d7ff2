package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// FieldType is the JSON type expected for a tool argument.
type FieldType string

// Supported argument types.
const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

// FieldSpec declares one tool argument.
type FieldSpec struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string

	// Minimum and Maximum bound integer and number values when set.
	Minimum *float64
	Maximum *float64

	// Default is advertised to clients only; Validate never injects it.
	Default any
}

// Schema is the structural argument contract of a tool.
// Arguments not declared in Fields are rejected.
type Schema struct {
	Fields []FieldSpec
}

// Field returns the spec for name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks args against the schema and reports every offending
// field in declaration order, followed by undeclared fields in sorted order.
// A nil map is treated as empty.
func (s Schema) Validate(tool string, args map[string]any) error {
	var problems []FieldError

	for _, f := range s.Fields {
		v, ok := args[f.Name]
		if !ok || v == nil {
			if f.Required {
				problems = append(problems, FieldError{Field: f.Name, Reason: "is required"})
			}
			continue
		}
		if reason := f.check(v); reason != "" {
			problems = append(problems, FieldError{Field: f.Name, Reason: reason})
		}
	}

	var extra []string
	for name := range args {
		if _, ok := s.Field(name); !ok {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		problems = append(problems, FieldError{Field: name, Reason: "is not a declared argument"})
	}

	if len(problems) > 0 {
		return &SchemaError{Tool: tool, Fields: problems}
	}
	return nil
}

func (f FieldSpec) check(v any) string {
	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return "must be a string"
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return "must be a boolean"
		}
	case TypeInteger, TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return "must be a " + string(f.Type)
		}
		if f.Type == TypeInteger && n != math.Trunc(n) {
			return "must be an integer"
		}
		if f.Minimum != nil && n < *f.Minimum {
			return fmt.Sprintf("must be >= %v", *f.Minimum)
		}
		if f.Maximum != nil && n > *f.Maximum {
			return fmt.Sprintf("must be <= %v", *f.Maximum)
		}
	}
	return ""
}

// toFloat accepts the numeric shapes produced by encoding/json and by Go callers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Bound is a helper for FieldSpec.Minimum and FieldSpec.Maximum.
func Bound(v float64) *float64 { return &v }

// StringArg returns args[name] as a string, or "" when absent.
// Callers are expected to have run Schema.Validate first.
func StringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// IntArg returns args[name] as an int, or 0 when absent.
func IntArg(args map[string]any, name string) int {
	n, ok := toFloat(args[name])
	if !ok {
		return 0
	}
	return int(n)
}

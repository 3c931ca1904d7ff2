package services

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// JSONSchema renders a tool schema as a closed JSON Schema object.
func JSONSchema(s domain.Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s.Fields)),
		// additionalProperties: false
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	for _, f := range s.Fields {
		prop := &jsonschema.Schema{
			Type:        string(f.Type),
			Description: f.Description,
			Minimum:     f.Minimum,
			Maximum:     f.Maximum,
		}
		if f.Default != nil {
			if raw, err := json.Marshal(f.Default); err == nil {
				prop.Default = raw
			}
		}
		out.Properties[f.Name] = prop
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

// SchemaFromJSON reads a tool schema back from any JSON Schema value, such as
// the input schema a remote MCP server advertises. Property order follows the
// required list first, then the remaining names sorted.
func SchemaFromJSON(v any) (domain.Schema, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("marshal schema: %w", err)
	}
	var js jsonschema.Schema
	if err := json.Unmarshal(raw, &js); err != nil {
		return domain.Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	if js.Type != "" && js.Type != "object" {
		return domain.Schema{}, fmt.Errorf("schema type %q is not an object", js.Type)
	}

	required := make(map[string]bool, len(js.Required))
	var names []string
	for _, name := range js.Required {
		if _, ok := js.Properties[name]; ok && !required[name] {
			required[name] = true
			names = append(names, name)
		}
	}
	names = append(names, sortedOptional(js.Properties, required)...)

	var s domain.Schema
	for _, name := range names {
		f := domain.FieldSpec{Name: name, Required: required[name]}
		if prop := js.Properties[name]; prop != nil {
			f.Type = domain.FieldType(prop.Type)
			f.Description = prop.Description
			f.Minimum = prop.Minimum
			f.Maximum = prop.Maximum
			if len(prop.Default) > 0 {
				var d any
				if json.Unmarshal(prop.Default, &d) == nil {
					f.Default = d
				}
			}
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func sortedOptional(props map[string]*jsonschema.Schema, required map[string]bool) []string {
	var names []string
	for name := range props {
		if !required[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

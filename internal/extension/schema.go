package extension

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Schema describes the JSON shape of an extension payload. It marshals to a
// JSON Schema document and supports structural validation of decoded values.
// Schemas are composed at startup and treated as immutable afterwards.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Const       string             `json:"const,omitempty"`
	OneOf       []*Schema          `json:"oneOf,omitempty"`
	Pattern     string             `json:"pattern,omitempty"`
	Format      string             `json:"format,omitempty"`
	MaxLength   int                `json:"maxLength,omitempty"`
	MaxItems    int                `json:"maxItems,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// Object creates an object schema with the given properties.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// String creates a string schema.
func String() *Schema {
	return &Schema{Type: "string"}
}

// Number creates a number schema.
func Number() *Schema {
	return &Schema{Type: "number"}
}

// Boolean creates a boolean schema.
func Boolean() *Schema {
	return &Schema{Type: "boolean"}
}

// Array creates an array schema with the given item schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// OneOfSchemas creates a union schema over the given alternatives.
func OneOfSchemas(alternatives ...*Schema) *Schema {
	return &Schema{OneOf: alternatives}
}

// Describe sets the description and returns the schema for chaining.
func (s *Schema) Describe(description string) *Schema {
	s.Description = description
	return s
}

// WithEnum restricts a string schema to the given values.
func (s *Schema) WithEnum(values ...string) *Schema {
	s.Enum = values
	return s
}

// WithPattern restricts a string schema to the given regular expression.
func (s *Schema) WithPattern(pattern string) *Schema {
	s.Pattern = pattern
	return s
}

// WithFormat annotates a string schema with a format hint.
func (s *Schema) WithFormat(format string) *Schema {
	s.Format = format
	return s
}

// WithMaxLength caps a string schema's length.
func (s *Schema) WithMaxLength(n int) *Schema {
	s.MaxLength = n
	return s
}

// WithMaxItems caps an array schema's length.
func (s *Schema) WithMaxItems(n int) *Schema {
	s.MaxItems = n
	return s
}

// WithRange bounds a number schema.
func (s *Schema) WithRange(min, max float64) *Schema {
	s.Minimum = &min
	s.Maximum = &max
	return s
}

// JSON returns the schema as a JSON Schema document.
func (s *Schema) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// Validate checks a decoded JSON value against the schema. It is used for
// final-snapshot validation only; intermediate streaming snapshots are
// deliberately not validated.
func (s *Schema) Validate(value any) error {
	return s.validate(value, "$")
}

func (s *Schema) validate(value any, path string) error {
	if len(s.OneOf) > 0 {
		for _, alt := range s.OneOf {
			if alt.validate(value, path) == nil {
				return nil
			}
		}
		return fmt.Errorf("%s: no alternative matched", path)
	}

	switch s.Type {
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, value)
		}
		for _, req := range s.Required {
			if _, present := obj[req]; !present {
				return fmt.Errorf("%s: missing required property %q", path, req)
			}
		}
		for name, prop := range s.Properties {
			v, present := obj[name]
			if !present {
				continue
			}
			if err := prop.validate(v, path+"."+name); err != nil {
				return err
			}
		}
	case "array":
		arr, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, value)
		}
		if s.MaxItems > 0 && len(arr) > s.MaxItems {
			return fmt.Errorf("%s: array exceeds %d items", path, s.MaxItems)
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %T", path, value)
		}
		if s.MaxLength > 0 && len(str) > s.MaxLength {
			return fmt.Errorf("%s: string exceeds %d characters", path, s.MaxLength)
		}
		if s.Const != "" && str != s.Const {
			return fmt.Errorf("%s: expected %q, got %q", path, s.Const, str)
		}
		if len(s.Enum) > 0 && !contains(s.Enum, str) {
			return fmt.Errorf("%s: %q is not one of the allowed values", path, str)
		}
		if s.Pattern != "" {
			matched, err := regexp.MatchString(s.Pattern, str)
			if err != nil {
				return fmt.Errorf("%s: invalid pattern: %w", path, err)
			}
			if !matched {
				return fmt.Errorf("%s: %q does not match pattern %s", path, str, s.Pattern)
			}
		}
	case "number":
		num, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%s: expected number, got %T", path, value)
		}
		if s.Minimum != nil && num < *s.Minimum {
			return fmt.Errorf("%s: %v below minimum %v", path, num, *s.Minimum)
		}
		if s.Maximum != nil && num > *s.Maximum {
			return fmt.Errorf("%s: %v above maximum %v", path, num, *s.Maximum)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", path, value)
		}
	case "":
		// Untyped schema accepts anything.
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

package extension

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestSchemaJSON(t *testing.T) {
	t.Run("object schema marshals with properties and required", func(t *testing.T) {
		s := Object(map[string]*Schema{
			"title": String().Describe("the title"),
			"count": Number(),
		}, "title")

		data, err := s.JSON()
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "object", doc["type"])
		assert.Contains(t, doc, "properties")
		assert.Equal(t, []any{"title"}, doc["required"])
	})

	t.Run("const marshals for discriminators", func(t *testing.T) {
		s := &Schema{Type: "string", Const: "email"}
		data, err := s.JSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"string","const":"email"}`, string(data))
	})
}

func TestSchemaValidate(t *testing.T) {
	t.Run("accepts valid object", func(t *testing.T) {
		s := Object(map[string]*Schema{
			"name":  String(),
			"items": Array(String()),
		}, "name", "items")

		err := s.Validate(decode(t, `{"name":"groceries","items":["milk"]}`))
		assert.NoError(t, err)
	})

	t.Run("rejects missing required property", func(t *testing.T) {
		s := Object(map[string]*Schema{"name": String()}, "name")
		err := s.Validate(decode(t, `{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("rejects wrong type", func(t *testing.T) {
		s := Object(map[string]*Schema{"count": Number()})
		err := s.Validate(decode(t, `{"count":"three"}`))
		assert.Error(t, err)
	})

	t.Run("enforces enum", func(t *testing.T) {
		s := String().WithEnum("barChart", "lineChart")
		assert.NoError(t, s.Validate("barChart"))
		assert.Error(t, s.Validate("scatterPlot"))
	})

	t.Run("enforces const", func(t *testing.T) {
		s := &Schema{Type: "string", Const: "todo"}
		assert.NoError(t, s.Validate("todo"))
		assert.Error(t, s.Validate("draft"))
	})

	t.Run("enforces pattern", func(t *testing.T) {
		s := String().WithPattern(`^\d{4}-\d{2}-\d{2}$`)
		assert.NoError(t, s.Validate("2026-03-14"))
		assert.Error(t, s.Validate("March 14"))
	})

	t.Run("enforces max items and max length", func(t *testing.T) {
		s := Array(String().WithMaxLength(3)).WithMaxItems(2)
		assert.NoError(t, s.Validate(decode(t, `["ab","cd"]`)))
		assert.Error(t, s.Validate(decode(t, `["ab","cd","ef"]`)))
		assert.Error(t, s.Validate(decode(t, `["abcd"]`)))
	})

	t.Run("oneOf matches any alternative", func(t *testing.T) {
		s := OneOfSchemas(
			String(),
			Object(map[string]*Schema{"extension": String()}, "extension"),
		)
		assert.NoError(t, s.Validate("hello"))
		assert.NoError(t, s.Validate(decode(t, `{"extension":"todo"}`)))
		assert.Error(t, s.Validate(decode(t, `42`)))
	})

	t.Run("number range", func(t *testing.T) {
		s := Number().WithRange(0, 10)
		assert.NoError(t, s.Validate(5.0))
		assert.Error(t, s.Validate(-1.0))
		assert.Error(t, s.Validate(11.0))
	})
}

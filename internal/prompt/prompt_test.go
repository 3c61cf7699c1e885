package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/extension"
	"github.com/capitalize-ai/extension-chat/internal/extension/builtin"
)

func testRegistry(t *testing.T) *extension.Registry {
	t.Helper()
	reg, err := extension.NewRegistry(builtin.All())
	require.NoError(t, err)
	return reg
}

func TestCapabilityLines(t *testing.T) {
	reg := testRegistry(t)
	lines := strings.Split(CapabilityLines(reg), "\n")

	t.Run("one line per extension in registry order", func(t *testing.T) {
		require.Len(t, lines, reg.Len())
		assert.True(t, strings.HasPrefix(lines[0], "email: "))
		assert.True(t, strings.HasPrefix(lines[len(lines)-1], "comparison: "))
	})

	t.Run("each line carries the usage hint", func(t *testing.T) {
		for _, line := range lines {
			name, hint, found := strings.Cut(line, ": ")
			require.True(t, found)
			assert.NotEmpty(t, name)
			assert.NotEmpty(t, hint)
		}
	})
}

func TestBuildSystemPrompt(t *testing.T) {
	reg := testRegistry(t)
	system, err := BuildSystemPrompt(reg)
	require.NoError(t, err)

	t.Run("contains capability list", func(t *testing.T) {
		assert.Contains(t, system, "todo: use when you want to create a todo list")
	})

	t.Run("embeds the response schema as JSON", func(t *testing.T) {
		start := strings.Index(system, `{"type":"object"`)
		require.GreaterOrEqual(t, start, 0)
		assert.True(t, json.Valid([]byte(system[start:])))
	})
}

func TestResponseSchema(t *testing.T) {
	reg := testRegistry(t)
	schema := ResponseSchema(reg)

	t.Run("accepts prose-only turn", func(t *testing.T) {
		var v any
		require.NoError(t, json.Unmarshal([]byte(`{"response":["hello there"]}`), &v))
		assert.NoError(t, schema.Validate(v))
	})

	t.Run("accepts mixed prose and extension payload", func(t *testing.T) {
		doc := `{"response":["here is a list",{"extension":"todo","response":{"name":"Tasks","items":["one"]}}]}`
		var v any
		require.NoError(t, json.Unmarshal([]byte(doc), &v))
		assert.NoError(t, schema.Validate(v))
	})

	t.Run("rejects unknown extension tag", func(t *testing.T) {
		doc := `{"response":[{"extension":"teleport","response":{}}]}`
		var v any
		require.NoError(t, json.Unmarshal([]byte(doc), &v))
		assert.Error(t, schema.Validate(v))
	})

	t.Run("rejects payload missing required fields", func(t *testing.T) {
		doc := `{"response":[{"extension":"todo","response":{"name":"Tasks"}}]}`
		var v any
		require.NoError(t, json.Unmarshal([]byte(doc), &v))
		assert.Error(t, schema.Validate(v))
	})

	t.Run("rejects document without response key", func(t *testing.T) {
		var v any
		require.NoError(t, json.Unmarshal([]byte(`{"answer":[]}`), &v))
		assert.Error(t, schema.Validate(v))
	})
}

package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(name string) Descriptor {
	return Descriptor{
		Name:   name,
		Kind:   KindPresentation,
		Prompt: "use for testing",
		Schema: Object(map[string]*Schema{"value": String()}),
		Render: func(props Props, interact InteractFunc) Node {
			return Markdown(props.String("value"))
		},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("registers descriptors in order", func(t *testing.T) {
		reg, err := NewRegistry([]Descriptor{descriptor("alpha"), descriptor("beta")})
		require.NoError(t, err)

		all := reg.All()
		require.Len(t, all, 2)
		assert.Equal(t, "alpha", all[0].Name)
		assert.Equal(t, "beta", all[1].Name)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewRegistry([]Descriptor{descriptor("alpha"), descriptor("alpha")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alpha")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRegistry([]Descriptor{descriptor("")})
		require.Error(t, err)
	})

	t.Run("rejects nil schema", func(t *testing.T) {
		d := descriptor("alpha")
		d.Schema = nil
		_, err := NewRegistry([]Descriptor{d})
		require.Error(t, err)
	})

	t.Run("rejects nil render", func(t *testing.T) {
		d := descriptor("alpha")
		d.Render = nil
		_, err := NewRegistry([]Descriptor{d})
		require.Error(t, err)
	})
}

func TestRegistryLookup(t *testing.T) {
	reg, err := NewRegistry([]Descriptor{descriptor("alpha"), descriptor("beta")})
	require.NoError(t, err)

	t.Run("finds registered extension", func(t *testing.T) {
		d, ok := reg.Lookup("beta")
		require.True(t, ok)
		assert.Equal(t, "beta", d.Name)
	})

	t.Run("misses unknown extension", func(t *testing.T) {
		_, ok := reg.Lookup("gamma")
		assert.False(t, ok)
	})
}

func TestRegistryAll(t *testing.T) {
	t.Run("returns a copy", func(t *testing.T) {
		reg, err := NewRegistry([]Descriptor{descriptor("alpha")})
		require.NoError(t, err)

		all := reg.All()
		all[0] = descriptor("mutated")

		fresh := reg.All()
		assert.Equal(t, "alpha", fresh[0].Name)
	})
}

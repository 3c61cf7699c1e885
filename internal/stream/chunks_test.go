package stream

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineChunks(t *testing.T) {
	t.Run("frames one chunk per line", func(t *testing.T) {
		body := "{\"response\":[\"a\"]}\n{\"response\":[\"ab\"]}\n"
		chunks := NewLineChunks(io.NopCloser(strings.NewReader(body)))
		defer chunks.Close()

		first, err := chunks.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"response":["a"]}`, string(first))

		second, err := chunks.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"response":["ab"]}`, string(second))

		_, err = chunks.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		body := "\n\n{\"response\":[]}\n\n"
		chunks := NewLineChunks(io.NopCloser(strings.NewReader(body)))
		defer chunks.Close()

		chunk, err := chunks.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"response":[]}`, string(chunk))

		_, err = chunks.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		chunks := NewLineChunks(io.NopCloser(strings.NewReader("{}\n")))
		defer chunks.Close()

		_, err := chunks.Next(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package stream

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

// sliceChunks yields a fixed chunk list then EOF.
type sliceChunks struct {
	chunks [][]byte
	pos    int
	closed bool
}

func (s *sliceChunks) Next(ctx context.Context) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *sliceChunks) Close() { s.closed = true }

func chunksOf(docs ...string) *sliceChunks {
	out := &sliceChunks{}
	for _, d := range docs {
		out.chunks = append(out.chunks, []byte(d))
	}
	return out
}

func TestConsume(t *testing.T) {
	r := NewReconciler(logger.NewNop())

	t.Run("publishes one snapshot per chunk in order", func(t *testing.T) {
		chunks := chunksOf(
			`{"response":["he"]}`,
			`{"response":["hello"]}`,
			`{"response":["hello",{"extension":"todo","response":{"name":"T"}}]}`,
		)

		var seen []model.StructuredResponse
		final, err := r.Consume(context.Background(), chunks, func(s model.StructuredResponse) {
			seen = append(seen, s)
		})
		require.NoError(t, err)
		require.Len(t, seen, 3)
		assert.Equal(t, "he", seen[0].Response[0].TextContent())
		assert.Equal(t, "hello", seen[1].Response[0].TextContent())
		require.Len(t, final.Response, 2)
		assert.Equal(t, "todo", final.Response[1].Extension())
		assert.True(t, chunks.closed)
	})

	t.Run("final value equals last published snapshot", func(t *testing.T) {
		chunks := chunksOf(`{"response":["a"]}`, `{"response":["ab"]}`)

		var last model.StructuredResponse
		final, err := r.Consume(context.Background(), chunks, func(s model.StructuredResponse) {
			last = s
		})
		require.NoError(t, err)
		assert.Equal(t, last, *final)
	})

	t.Run("empty stream is ErrNoContent", func(t *testing.T) {
		_, err := r.Consume(context.Background(), chunksOf(), nil)
		assert.ErrorIs(t, err, ErrNoContent)
	})

	t.Run("invalid JSON chunk is a protocol error", func(t *testing.T) {
		chunks := chunksOf(`{"response":["ok"]}`, `{"response":`)
		_, err := r.Consume(context.Background(), chunks, nil)

		var protoErr *ProtocolError
		require.ErrorAs(t, err, &protoErr)
	})

	t.Run("error chunk is a protocol error carrying the message", func(t *testing.T) {
		chunks := chunksOf(`{"error":"model overloaded"}`)
		_, err := r.Consume(context.Background(), chunks, nil)

		var protoErr *ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Contains(t, protoErr.Reason, "model overloaded")
	})

	t.Run("document with both error and response keys is content", func(t *testing.T) {
		chunks := chunksOf(`{"error":"","response":["fine"]}`)
		final, err := r.Consume(context.Background(), chunks, nil)
		require.NoError(t, err)
		assert.Equal(t, "fine", final.Response[0].TextContent())
	})

	t.Run("cancellation stops publication", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		chunks := chunksOf(`{"response":["a"]}`, `{"response":["ab"]}`, `{"response":["abc"]}`)

		var published int
		_, err := r.Consume(ctx, chunks, func(model.StructuredResponse) {
			published++
			cancel()
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, published)
	})

	t.Run("published snapshots are isolated from later ones", func(t *testing.T) {
		chunks := chunksOf(`{"response":["v1"]}`, `{"response":["v2"]}`)

		var snapshots []model.StructuredResponse
		_, err := r.Consume(context.Background(), chunks, func(s model.StructuredResponse) {
			snapshots = append(snapshots, s)
		})
		require.NoError(t, err)
		assert.Equal(t, "v1", snapshots[0].Response[0].TextContent())
	})
}

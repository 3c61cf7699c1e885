package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

func recordingRouter() (*Router, *[]string) {
	var sent []string
	r := NewRouter(func(ctx context.Context, text string) error {
		sent = append(sent, text)
		return nil
	}, logger.NewNop())
	return r, &sent
}

func TestRouterHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("select submits the chosen option", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "select", []any{"Italian restaurants"})
		require.Len(t, *sent, 1)
		assert.Equal(t, "Italian restaurants", (*sent)[0])
	})

	t.Run("coin flip result becomes a summary message", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "coin-flip-game-ended", []any{float64(7), float64(10), float64(70)})
		require.Len(t, *sent, 1)
		assert.Contains(t, (*sent)[0], "7 wins out of 10 rounds")
		assert.Contains(t, (*sent)[0], "70%")
	})

	t.Run("guessing game won", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "guessing-game-ended", []any{"won", float64(4)})
		require.Len(t, *sent, 1)
		assert.Contains(t, (*sent)[0], "won the guessing game in 4 attempts")
	})

	t.Run("guessing game lost includes the target", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "guessing-game-ended", []any{"lost", float64(42)})
		require.Len(t, *sent, 1)
		assert.Contains(t, (*sent)[0], "The number was 42")
	})

	t.Run("clicker game with and without score", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "clicker-game-ended", []any{float64(99)})
		r.Handle(ctx, "clicker-game-ended", nil)
		require.Len(t, *sent, 2)
		assert.Contains(t, (*sent)[0], "score of 99")
		assert.Contains(t, (*sent)[1], "finished the clicker game")
	})

	t.Run("unknown kind is a no-op", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "teleport", []any{"somewhere"})
		assert.Empty(t, *sent)
	})

	t.Run("malformed arguments are a no-op", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Handle(ctx, "select", nil)
		r.Handle(ctx, "select", []any{42})
		r.Handle(ctx, "guessing-game-ended", []any{"drew", float64(1)})
		r.Handle(ctx, "coin-flip-game-ended", []any{"many", "several", "most"})
		assert.Empty(t, *sent)
	})

	t.Run("submission errors are swallowed", func(t *testing.T) {
		r := NewRouter(func(ctx context.Context, text string) error {
			return errors.New("conversation busy")
		}, logger.NewNop())
		assert.NotPanics(t, func() {
			r.Handle(ctx, "select", []any{"option"})
		})
	})

	t.Run("registered custom kind is routed", func(t *testing.T) {
		r, sent := recordingRouter()
		r.Register("poll-answered", func(args []any) (string, bool) {
			if len(args) == 0 {
				return "", false
			}
			s, ok := args[0].(string)
			return "My answer: " + s, ok
		})
		r.Handle(ctx, "poll-answered", []any{"yes"})
		require.Len(t, *sent, 1)
		assert.Equal(t, "My answer: yes", (*sent)[0])
	})
}

package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

func newTestManager(t *testing.T) (*Manager, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{docs: []string{`{"response":["answer"]}`}}
	return NewManager(store.NewMemory(), transport, logger.NewNop()), transport
}

func TestManagerStores(t *testing.T) {
	t.Run("same id yields the same store", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.Same(t, m.Store("conv-a"), m.Store("conv-a"))
	})

	t.Run("different ids yield different stores", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.NotSame(t, m.Store("conv-a"), m.Store("conv-b"))
	})

	t.Run("current is stable until switched", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.Same(t, m.Current(), m.Current())
	})

	t.Run("new conversation starts empty with a fresh id", func(t *testing.T) {
		m, _ := newTestManager(t)
		first := m.Current()
		second := m.NewConversation()

		assert.NotEqual(t, first.ConversationID(), second.ConversationID())
		assert.Empty(t, second.VisibleTurns())
		assert.Same(t, second, m.Current())
	})
}

func TestManagerDeleteConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a non-current conversation keeps the session", func(t *testing.T) {
		m, _ := newTestManager(t)
		current := m.Current()

		other := m.Store("other-conv")
		require.NoError(t, other.Submit(ctx, "hello", nil))

		existed, err := m.DeleteConversation(ctx, "other-conv")
		require.NoError(t, err)
		assert.True(t, existed)
		assert.Same(t, current, m.Current())
	})

	t.Run("deleting the current conversation switches to a fresh empty one", func(t *testing.T) {
		m, _ := newTestManager(t)
		current := m.Current()
		require.NoError(t, current.Submit(ctx, "to be deleted", nil))

		existed, err := m.DeleteConversation(ctx, current.ConversationID())
		require.NoError(t, err)
		assert.True(t, existed)

		fresh := m.Current()
		assert.NotEqual(t, current.ConversationID(), fresh.ConversationID())
		assert.Empty(t, fresh.VisibleTurns())
	})

	t.Run("deleting an unknown conversation reports not existed", func(t *testing.T) {
		m, _ := newTestManager(t)
		existed, err := m.DeleteConversation(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, existed)
	})
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/model"
)

func TestMemoryConversations(t *testing.T) {
	ctx := context.Background()

	t.Run("missing conversation reads as empty", func(t *testing.T) {
		m := NewMemory()
		turns, err := m.GetMessages(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("appends create the conversation implicitly", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.AppendUserMessage(ctx, "c1", "hello"))
		require.NoError(t, m.AppendAssistantMessage(ctx, "c1",
			model.StructuredResponse{Response: []model.Element{model.Text("hi")}}))

		turns, err := m.GetMessages(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, model.RoleUser, turns[0].Role)
		assert.Equal(t, model.RoleAssistant, turns[1].Role)
	})

	t.Run("returned turns are a copy", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.AppendUserMessage(ctx, "c1", "original"))

		turns, err := m.GetMessages(ctx, "c1")
		require.NoError(t, err)
		turns[0] = model.UserTurn("mutated")

		fresh, err := m.GetMessages(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "original", fresh[0].Text)
	})

	t.Run("list orders by most recent update", func(t *testing.T) {
		m := NewMemory()
		now := time.Now()
		m.now = func() time.Time { return now }
		require.NoError(t, m.AppendUserMessage(ctx, "old", "first"))

		m.now = func() time.Time { return now.Add(time.Minute) }
		require.NoError(t, m.AppendUserMessage(ctx, "new", "second"))

		summaries, err := m.ListConversations(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "new", summaries[0].ID)
		assert.Equal(t, "old", summaries[1].ID)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.AppendUserMessage(ctx, "c1", "hello"))

		existed, err := m.DeleteConversation(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = m.DeleteConversation(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, existed)
	})
}

func TestMemoryPreview(t *testing.T) {
	ctx := context.Background()

	t.Run("preview comes from the first user message", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.AppendUserMessage(ctx, "c1", "short question"))

		summaries, err := m.ListConversations(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "short question", summaries[0].Preview)
	})

	t.Run("long previews are truncated with ellipsis", func(t *testing.T) {
		m := NewMemory()
		long := "this message is clearly longer than thirty characters total"
		require.NoError(t, m.AppendUserMessage(ctx, "c1", long))

		summaries, err := m.ListConversations(ctx)
		require.NoError(t, err)
		assert.Equal(t, long[:30]+"...", summaries[0].Preview)
	})
}

func TestMemoryPins(t *testing.T) {
	ctx := context.Background()

	t.Run("create, list and delete", func(t *testing.T) {
		m := NewMemory()
		item, err := m.CreatePinnedItem(ctx, "todo", map[string]any{"name": "Tasks"})
		require.NoError(t, err)
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, "todo", item.Extension)

		items, err := m.ListPinnedItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)

		existed, err := m.DeletePinnedItem(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, existed)

		items, err = m.ListPinnedItems(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("deleting an unknown pin reports not existed", func(t *testing.T) {
		m := NewMemory()
		existed, err := m.DeletePinnedItem(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, existed)
	})
}

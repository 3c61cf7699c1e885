package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capitalize-ai/extension-chat/internal/model"
)

type conversationRecord struct {
	id        string
	turns     []model.Turn
	createdAt time.Time
	updatedAt time.Time
}

// Memory is the in-memory development variant of the persistence
// collaborator. It is injected like any other Store; nothing in the pipeline
// reaches for it as a process-wide global.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]*conversationRecord
	pins          map[string]*model.PinnedItem
	now           func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]*conversationRecord),
		pins:          make(map[string]*model.PinnedItem),
		now:           time.Now,
	}
}

// ListConversations returns summaries ordered by most recent update.
func (m *Memory) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.ConversationSummary, 0, len(m.conversations))
	for _, rec := range m.conversations {
		out = append(out, model.ConversationSummary{
			ID:           rec.id,
			MessageCount: len(rec.turns),
			Preview:      preview(rec.turns),
			CreatedAt:    rec.createdAt,
			UpdatedAt:    rec.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// GetMessages returns the ordered turn list; a missing conversation is an
// empty list, since conversations are created implicitly on first message.
func (m *Memory) GetMessages(ctx context.Context, conversationID string) ([]model.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	turns := make([]model.Turn, len(rec.turns))
	copy(turns, rec.turns)
	return turns, nil
}

// AppendUserMessage appends a user turn, creating the conversation if absent.
func (m *Memory) AppendUserMessage(ctx context.Context, conversationID, text string) error {
	m.append(conversationID, model.UserTurn(text))
	return nil
}

// AppendAssistantMessage appends an assistant turn, creating the conversation
// if absent.
func (m *Memory) AppendAssistantMessage(ctx context.Context, conversationID string, content model.StructuredResponse) error {
	m.append(conversationID, model.AssistantTurn(content))
	return nil
}

func (m *Memory) append(conversationID string, turn model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.conversations[conversationID]
	if !ok {
		now := m.now()
		rec = &conversationRecord{id: conversationID, createdAt: now, updatedAt: now}
		m.conversations[conversationID] = rec
	}
	rec.turns = append(rec.turns, turn)
	rec.updatedAt = m.now()
}

// DeleteConversation removes a conversation, reporting whether it existed.
func (m *Memory) DeleteConversation(ctx context.Context, conversationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[conversationID]; !ok {
		return false, nil
	}
	delete(m.conversations, conversationID)
	return true, nil
}

// CreatePinnedItem stores a snapshot of one extension invocation.
func (m *Memory) CreatePinnedItem(ctx context.Context, extension string, props map[string]any) (*model.PinnedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	item := &model.PinnedItem{
		ID:        uuid.NewString(),
		Extension: extension,
		Props:     props,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.pins[item.ID] = item
	return item, nil
}

// ListPinnedItems returns pins ordered by most recent update.
func (m *Memory) ListPinnedItems(ctx context.Context) ([]model.PinnedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.PinnedItem, 0, len(m.pins))
	for _, item := range m.pins {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// DeletePinnedItem removes a pin, reporting whether it existed.
func (m *Memory) DeletePinnedItem(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pins[id]; !ok {
		return false, nil
	}
	delete(m.pins, id)
	return true, nil
}

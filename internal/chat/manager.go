package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

// Manager tracks the current conversation and hands out one Store per
// conversation ID, creating them lazily. IDs are opaque; a fresh one is a
// random UUID.
type Manager struct {
	persistence store.Store
	transport   Transport
	log         *logger.Logger
	opts        []Option

	mu      sync.Mutex
	stores  map[string]*Store
	current string
}

// NewManager creates a manager whose current conversation starts fresh.
func NewManager(persistence store.Store, transport Transport, log *logger.Logger, opts ...Option) *Manager {
	return &Manager{
		persistence: persistence,
		transport:   transport,
		log:         log,
		opts:        opts,
		stores:      make(map[string]*Store),
		current:     uuid.NewString(),
	}
}

// Store returns the state store for the given conversation, creating it on
// first use.
func (m *Manager) Store(conversationID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked(conversationID)
}

func (m *Manager) storeLocked(conversationID string) *Store {
	if s, ok := m.stores[conversationID]; ok {
		return s
	}
	s := NewStore(conversationID, m.persistence, m.transport, m.log, m.opts...)
	m.stores[conversationID] = s
	return s
}

// Current returns the store for the current conversation.
func (m *Manager) Current() *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked(m.current)
}

// NewConversation switches to a fresh empty conversation and returns its
// store.
func (m *Manager) NewConversation() *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = uuid.NewString()
	return m.storeLocked(m.current)
}

// DeleteConversation removes a conversation from persistence and drops its
// store. Deleting the current conversation immediately switches to a fresh
// empty one so the session never points at deleted history.
func (m *Manager) DeleteConversation(ctx context.Context, conversationID string) (bool, error) {
	existed, err := m.persistence.DeleteConversation(ctx, conversationID)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	delete(m.stores, conversationID)
	if conversationID == m.current {
		m.current = uuid.NewString()
		m.log.Info("current conversation deleted, starting fresh",
			zap.String("deleted_id", conversationID),
			zap.String("new_id", m.current))
	}
	m.mu.Unlock()

	return existed, nil
}

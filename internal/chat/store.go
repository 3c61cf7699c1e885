// Package chat implements the conversation state machine: optimistic
// submission with rollback, the ephemeral streaming turn, interaction
// routing, and the session that tracks the current conversation.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/extension"
	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/internal/stream"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/metrics"
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only submissions before
	// any network call.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy rejects a submission while another is in flight for the same
	// conversation. Concurrent submissions are rejected, not queued.
	ErrBusy = errors.New("a submission is already in flight")
)

// Transport opens a model stream for one submission. Implemented by
// llm.Transport in production and by fakes in tests.
type Transport interface {
	Open(ctx context.Context, req model.GenerateRequest) (stream.ChunkReader, error)
}

// ResearchHook optionally enriches the outgoing user text before the main
// stream opens (a secondary model call, a retrieval step). It runs to
// completion or is skipped; a failure is logged and ignored.
type ResearchHook func(ctx context.Context, userText string) (string, error)

// Persistence is the slice of the store the conversation state machine needs.
type Persistence interface {
	GetMessages(ctx context.Context, conversationID string) ([]model.Turn, error)
	AppendUserMessage(ctx context.Context, conversationID, text string) error
	AppendAssistantMessage(ctx context.Context, conversationID string, content model.StructuredResponse) error
}

// Store is the single authority for what the user currently sees in one
// conversation: persisted history plus at most one ephemeral assistant turn.
// It is the sole mutator of the visible list.
type Store struct {
	conversationID string
	persistence    Persistence
	transport      Transport
	reconciler     *stream.Reconciler
	research       ResearchHook
	finalSchema    *extension.Schema
	log            *logger.Logger

	mu        sync.RWMutex
	turns     []model.Turn
	ephemeral *model.StructuredResponse
	inFlight  bool
	lastErr   error
}

// Option configures a Store.
type Option func(*Store)

// WithResearchHook installs a pre-submission enrichment hook.
func WithResearchHook(hook ResearchHook) Option {
	return func(s *Store) { s.research = hook }
}

// WithFinalSchema validates the final snapshot of every stream against the
// turn-level response schema; a failure surfaces as a protocol error.
func WithFinalSchema(schema *extension.Schema) Option {
	return func(s *Store) { s.finalSchema = schema }
}

// NewStore creates the state store for one conversation.
func NewStore(conversationID string, persistence Persistence, transport Transport, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		conversationID: conversationID,
		persistence:    persistence,
		transport:      transport,
		reconciler:     stream.NewReconciler(log),
		log:            log.WithConversation(conversationID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConversationID returns the conversation this store owns.
func (s *Store) ConversationID() string {
	return s.conversationID
}

// Load refreshes the visible list from persistence. Callers invoke it on
// open, reconnect and refocus; staleness between refreshes is tolerated.
func (s *Store) Load(ctx context.Context) error {
	turns, err := s.persistence.GetMessages(ctx, s.conversationID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	s.mu.Lock()
	s.turns = turns
	s.mu.Unlock()
	return nil
}

// VisibleTurns returns the merged view: persisted history, any optimistic
// user turn, and the ephemeral assistant turn while streaming. The returned
// slice is a copy.
func (s *Store) VisibleTurns() []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Turn, len(s.turns), len(s.turns)+1)
	copy(out, s.turns)
	if s.ephemeral != nil {
		out = append(out, model.AssistantTurn(s.ephemeral.Clone()))
	}
	return out
}

// Busy reports whether a submission is in flight.
func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// LastError returns the failure of the most recent submission, cleared on the
// next accepted submission.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Submit appends the user turn optimistically, streams the assistant
// response, and commits both to persistence. onSnapshot, when non-nil,
// observes every partial value in arrival order.
//
// On any failure the visible list is restored to exactly its pre-submission
// state and the error is recorded as the store's last error. Cancelling ctx
// abandons the stream; no snapshots are applied afterwards.
func (s *Store) Submit(ctx context.Context, userText string, onSnapshot stream.SnapshotFunc) error {
	text := strings.TrimSpace(userText)
	if text == "" {
		return ErrEmptyMessage
	}

	// Optimistic update: record the rollback snapshot, then show the user
	// turn before any network round-trip.
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return ErrBusy
	}
	snapshot := make([]model.Turn, len(s.turns))
	copy(snapshot, s.turns)
	s.turns = append(s.turns, model.UserTurn(text))
	s.inFlight = true
	s.lastErr = nil
	s.mu.Unlock()

	metrics.StreamsActive.Inc()
	start := time.Now()

	err := s.run(ctx, text, onSnapshot)

	metrics.StreamsActive.Dec()

	s.mu.Lock()
	if err != nil {
		// Rollback: the visible list must equal the pre-submission list,
		// with no artifacts of the failed attempt.
		s.turns = snapshot
		s.lastErr = err
	}
	s.ephemeral = nil
	s.inFlight = false
	s.mu.Unlock()

	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rolled_back").Inc()
		metrics.RecordStream("error", time.Since(start).Seconds())
		s.log.Warn("submission failed", zap.Error(err))
		return err
	}

	metrics.SubmissionsTotal.WithLabelValues("committed").Inc()
	metrics.RecordStream("success", time.Since(start).Seconds())
	return nil
}

func (s *Store) run(ctx context.Context, text string, onSnapshot stream.SnapshotFunc) error {
	prompt := text
	if s.research != nil {
		enriched, err := s.research(ctx, text)
		if err != nil {
			s.log.Warn("research pre-pass failed, continuing without it", zap.Error(err))
		} else if enriched != "" {
			prompt = enriched
		}
	}

	chunks, err := s.transport.Open(ctx, model.GenerateRequest{
		ConversationID: s.conversationID,
		Content:        prompt,
		History:        s.historyWithPrompt(prompt),
	})
	if err != nil {
		return fmt.Errorf("open response stream: %w", err)
	}

	final, err := s.reconciler.Consume(ctx, chunks, func(partial model.StructuredResponse) {
		s.mu.Lock()
		s.ephemeral = &partial
		s.mu.Unlock()
		if onSnapshot != nil {
			onSnapshot(partial)
		}
	})
	if err != nil {
		return err
	}

	if s.finalSchema != nil {
		if err := validateFinal(s.finalSchema, final); err != nil {
			return &stream.ProtocolError{Reason: err.Error()}
		}
	}

	// Commit: the ephemeral turn is promoted to persisted history exactly
	// once, then the visible list is refreshed from persistence.
	if err := s.persistence.AppendUserMessage(ctx, s.conversationID, text); err != nil {
		return fmt.Errorf("persist user turn: %w", err)
	}
	if err := s.persistence.AppendAssistantMessage(ctx, s.conversationID, *final); err != nil {
		return fmt.Errorf("persist assistant turn: %w", err)
	}

	turns, err := s.persistence.GetMessages(ctx, s.conversationID)
	if err != nil {
		return fmt.Errorf("refresh conversation: %w", err)
	}

	s.mu.Lock()
	s.turns = turns
	s.mu.Unlock()
	return nil
}

// historyWithPrompt is the model-visible history: persisted turns plus the
// (possibly enriched) outgoing user turn.
func (s *Store) historyWithPrompt(prompt string) []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// s.turns already ends with the optimistic user turn; swap in the
	// enriched prompt without mutating visible state.
	history := make([]model.Turn, len(s.turns))
	copy(history, s.turns)
	if len(history) > 0 && history[len(history)-1].Role == model.RoleUser {
		history[len(history)-1] = model.UserTurn(prompt)
	}
	return history
}

func validateFinal(schema *extension.Schema, final *model.StructuredResponse) error {
	raw, err := json.Marshal(final)
	if err != nil {
		return err
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	return schema.Validate(value)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

const (
	// chatStreamName is the JetStream stream holding all conversation turns.
	chatStreamName = "CHAT_TURNS"

	// chatSubjectPrefix is the prefix for all conversation subjects.
	chatSubjectPrefix = "chat"

	// conversationsBucket indexes conversation summaries for listing.
	conversationsBucket = "chat_conversations"

	// pinsBucket holds pinned items.
	pinsBucket = "chat_pins"
)

// NATS is the durable persistence collaborator: the ordered turn log lives in
// a JetStream stream, with KV buckets for the conversation index and pinned
// items.
type NATS struct {
	conn          *NATSConn
	conversations jetstream.KeyValue
	pins          jetstream.KeyValue
	log           *logger.Logger
}

// NewNATS ensures the stream and buckets exist and returns the store.
func NewNATS(ctx context.Context, conn *NATSConn, log *logger.Logger) (*NATS, error) {
	js := conn.js

	if _, err := js.Stream(ctx, chatStreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        chatStreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", chatSubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      365 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Compression: jetstream.S2Compression,
			Description: "Conversation turns",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	conversations, err := ensureBucket(ctx, js, conversationsBucket)
	if err != nil {
		return nil, err
	}
	pins, err := ensureBucket(ctx, js, pinsBucket)
	if err != nil {
		return nil, err
	}

	return &NATS{conn: conn, conversations: conversations, pins: pins, log: log}, nil
}

func ensureBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return kv, nil
}

// Healthy reports whether the underlying connection is usable.
func (s *NATS) Healthy() error {
	if !s.conn.IsConnected() {
		return errors.New("NATS not connected")
	}
	return nil
}

func turnSubject(conversationID string, role model.Role) string {
	return fmt.Sprintf("%s.%s.msg.%s", chatSubjectPrefix, conversationID, role)
}

func conversationFilter(conversationID string) string {
	return fmt.Sprintf("%s.%s.msg.>", chatSubjectPrefix, conversationID)
}

// ListConversations reads the summary index, ordered by most recent update.
func (s *NATS) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	keys, err := s.conversations.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]model.ConversationSummary, 0, len(keys))
	for _, key := range keys {
		entry, err := s.conversations.Get(ctx, key)
		if err != nil {
			continue
		}
		var summary model.ConversationSummary
		if err := json.Unmarshal(entry.Value(), &summary); err != nil {
			s.log.Warn("skipping malformed conversation summary")
			continue
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// GetMessages replays the conversation's turn log in order.
func (s *NATS) GetMessages(ctx context.Context, conversationID string) ([]model.Turn, error) {
	consumer, err := s.conn.js.CreateConsumer(ctx, chatStreamName, jetstream.ConsumerConfig{
		FilterSubject: conversationFilter(conversationID),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	var turns []model.Turn
	for {
		batch, err := consumer.Fetch(100, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch turns: %w", err)
		}

		count := 0
		for msg := range batch.Messages() {
			count++
			var turn model.Turn
			if err := json.Unmarshal(msg.Data(), &turn); err != nil {
				s.log.Warn("skipping malformed turn")
				continue
			}
			turns = append(turns, turn)
		}
		if batch.Error() != nil && !errors.Is(batch.Error(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("batch error: %w", batch.Error())
		}
		if count < 100 {
			break
		}
	}
	return turns, nil
}

// AppendUserMessage publishes a user turn and updates the summary index.
func (s *NATS) AppendUserMessage(ctx context.Context, conversationID, text string) error {
	return s.append(ctx, conversationID, model.UserTurn(text))
}

// AppendAssistantMessage publishes an assistant turn and updates the summary
// index.
func (s *NATS) AppendAssistantMessage(ctx context.Context, conversationID string, content model.StructuredResponse) error {
	return s.append(ctx, conversationID, model.AssistantTurn(content))
}

func (s *NATS) append(ctx context.Context, conversationID string, turn model.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}
	if _, err := s.conn.js.Publish(ctx, turnSubject(conversationID, turn.Role), data); err != nil {
		return fmt.Errorf("failed to publish turn: %w", err)
	}
	return s.updateSummary(ctx, conversationID, turn)
}

// updateSummary is last-write-wins; the broker serializes writes per subject
// and the index is a liveness concern, not a correctness one.
func (s *NATS) updateSummary(ctx context.Context, conversationID string, turn model.Turn) error {
	now := time.Now()
	summary := model.ConversationSummary{ID: conversationID, CreatedAt: now}

	if entry, err := s.conversations.Get(ctx, conversationID); err == nil {
		_ = json.Unmarshal(entry.Value(), &summary)
	}
	summary.MessageCount++
	summary.UpdatedAt = now
	if summary.Preview == "" && turn.Role == model.RoleUser {
		summary.Preview = preview([]model.Turn{turn})
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if _, err := s.conversations.Put(ctx, conversationID, data); err != nil {
		return fmt.Errorf("failed to update conversation index: %w", err)
	}
	return nil
}

// DeleteConversation purges the turn log and removes the index entry,
// reporting whether the conversation existed.
func (s *NATS) DeleteConversation(ctx context.Context, conversationID string) (bool, error) {
	_, err := s.conversations.Get(ctx, conversationID)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read conversation index: %w", err)
	}

	str, err := s.conn.js.Stream(ctx, chatStreamName)
	if err != nil {
		return false, fmt.Errorf("failed to open stream: %w", err)
	}
	if err := str.Purge(ctx, jetstream.WithPurgeSubject(conversationFilter(conversationID))); err != nil {
		return false, fmt.Errorf("failed to purge turns: %w", err)
	}
	if err := s.conversations.Delete(ctx, conversationID); err != nil {
		return false, fmt.Errorf("failed to delete conversation index: %w", err)
	}
	return true, nil
}

// CreatePinnedItem stores a snapshot of one extension invocation.
func (s *NATS) CreatePinnedItem(ctx context.Context, extension string, props map[string]any) (*model.PinnedItem, error) {
	now := time.Now()
	item := &model.PinnedItem{
		ID:        uuid.NewString(),
		Extension: extension,
		Props:     props,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pinned item: %w", err)
	}
	if _, err := s.pins.Put(ctx, item.ID, data); err != nil {
		return nil, fmt.Errorf("failed to store pinned item: %w", err)
	}
	return item, nil
}

// ListPinnedItems returns pins ordered by most recent update.
func (s *NATS) ListPinnedItems(ctx context.Context) ([]model.PinnedItem, error) {
	keys, err := s.pins.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list pinned items: %w", err)
	}

	out := make([]model.PinnedItem, 0, len(keys))
	for _, key := range keys {
		entry, err := s.pins.Get(ctx, key)
		if err != nil {
			continue
		}
		var item model.PinnedItem
		if err := json.Unmarshal(entry.Value(), &item); err != nil {
			s.log.Warn("skipping malformed pinned item")
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// DeletePinnedItem removes a pin, reporting whether it existed.
func (s *NATS) DeletePinnedItem(ctx context.Context, id string) (bool, error) {
	if _, err := s.pins.Get(ctx, id); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read pinned item: %w", err)
	}
	if err := s.pins.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete pinned item: %w", err)
	}
	return true, nil
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const roomKeyPrefix = "chat_room:"

// Store persists room messages in append order.
type Store interface {
	Append(ctx context.Context, roomID string, msg Message) error
	List(ctx context.Context, roomID string, limit int64) ([]Message, error)
}

// RedisStore keeps each room as a Redis list of JSON-encoded messages with a
// rolling TTL and a capped length.
type RedisStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

// NewRedisStore builds a store backed by the provided client. A nil client
// yields a nil store; all methods on a nil store are no-ops.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration, maxMessages int64) *RedisStore {
	if redisClient == nil {
		return nil
	}
	return &RedisStore{
		redis:       redisClient,
		tracer:      otel.Tracer("clinic-platform/chat"),
		ttl:         ttl,
		maxMessages: maxMessages,
	}
}

// Append pushes a message onto the room list.
func (s *RedisStore) Append(ctx context.Context, roomID string, msg Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if roomID == "" {
		return errors.New("chat: roomID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.RoomID = roomID

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("chat: marshal message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "chat.store.append")
	defer span.End()

	key := roomKey(roomID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: append message: %w", err)
	}
	return nil
}

// List returns the most recent messages in append order. limit <= 0 returns
// the whole room.
func (s *RedisStore) List(ctx context.Context, roomID string, limit int64) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if roomID == "" {
		return nil, errors.New("chat: roomID required")
	}

	ctx, span := s.tracer.Start(ctx, "chat.store.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, roomKey(roomID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("chat: list messages: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string][]Message
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string][]Message)}
}

// Append stores a message in room order.
func (s *MemoryStore) Append(ctx context.Context, roomID string, msg Message) error {
	if roomID == "" {
		return errors.New("chat: roomID required")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.RoomID = roomID

	s.mu.Lock()
	s.rooms[roomID] = append(s.rooms[roomID], msg)
	s.mu.Unlock()
	return nil
}

// List returns the most recent messages in append order.
func (s *MemoryStore) List(ctx context.Context, roomID string, limit int64) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.rooms[roomID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hsalem/barberbook/internal/engine"
)

const (
	transcriptKeyPrefix = "barberbook:transcript:"
	transcriptTTL       = 30 * 24 * time.Hour
	transcriptMax       = 500
)

// TranscriptStore persists conversation messages. Append-only; List
// returns messages in insertion order.
type TranscriptStore interface {
	Append(ctx context.Context, conversationID string, msg engine.Message) error
	List(ctx context.Context, conversationID string, limit int64) ([]engine.Message, error)
}

// RedisTranscriptStore keeps each conversation as a Redis list with a
// rolling cap and TTL.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
	max    int64
}

// NewRedisTranscriptStore creates a transcript store; returns nil when no
// Redis client is configured so callers can treat transcripts as optional.
func NewRedisTranscriptStore(client *redis.Client) *RedisTranscriptStore {
	if client == nil {
		return nil
	}
	return &RedisTranscriptStore{
		redis:  client,
		tracer: otel.Tracer("barberbook.internal.session.transcript"),
		ttl:    transcriptTTL,
		max:    transcriptMax,
	}
}

// SetRetention overrides the default TTL and per-conversation message cap.
func (s *RedisTranscriptStore) SetRetention(ttl time.Duration, max int64) {
	if ttl > 0 {
		s.ttl = ttl
	}
	if max > 0 {
		s.max = max
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, conversationID string, msg engine.Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if conversationID == "" {
		return errors.New("session: transcript conversationID required")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("session: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "session.transcript.append")
	defer span.End()

	key := transcriptKeyPrefix + conversationID
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	pipe.LTrim(ctx, key, -s.max, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: append transcript message: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, conversationID string, limit int64) ([]engine.Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if conversationID == "" {
		return nil, errors.New("session: transcript conversationID required")
	}

	ctx, span := s.tracer.Start(ctx, "session.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKeyPrefix+conversationID, start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []engine.Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: list transcript: %w", err)
	}

	out := make([]engine.Message, 0, len(raw))
	for _, item := range raw {
		var msg engine.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// MemoryTranscriptStore is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryTranscriptStore struct {
	mu    sync.RWMutex
	lists map[string][]engine.Message
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{lists: make(map[string][]engine.Message)}
}

func (s *MemoryTranscriptStore) Append(_ context.Context, conversationID string, msg engine.Message) error {
	if conversationID == "" {
		return errors.New("session: transcript conversationID required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[conversationID] = append(s.lists[conversationID], msg)
	return nil
}

func (s *MemoryTranscriptStore) List(_ context.Context, conversationID string, limit int64) ([]engine.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.lists[conversationID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]engine.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const appointmentsKey = "barberbook:appointments"

// RedisStore keeps appointments in a single Redis hash keyed by slot.
// HSETNX makes the conflict check and the insert one atomic operation, so
// concurrent saves for the same slot resolve to exactly one winner across
// processes.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed appointment store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("booking: redis client required")
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("barberbook.internal.booking.redis"),
	}
}

// Load reads every appointment in the hash, skipping malformed values.
func (s *RedisStore) Load(ctx context.Context) ([]Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "booking.redis.load")
	defer span.End()

	raw, err := s.redis.HGetAll(ctx, appointmentsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Appointment{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("booking: load appointments: %w", err)
	}

	out := make([]Appointment, 0, len(raw))
	for _, item := range raw {
		var appt Appointment
		if err := json.Unmarshal([]byte(item), &appt); err != nil {
			continue
		}
		if _, err := appt.Time(); err != nil {
			continue
		}
		out = append(out, appt)
	}
	return out, nil
}

// Save inserts the appointment under its slot key. ErrSlotTaken when the
// field already exists.
func (s *RedisStore) Save(ctx context.Context, appt Appointment) error {
	key, err := appt.SlotKey()
	if err != nil {
		return fmt.Errorf("booking: save: bad datetime %q: %w", appt.DatetimeISO, err)
	}

	data, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("booking: marshal appointment: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "booking.redis.save")
	defer span.End()

	inserted, err := s.redis.HSetNX(ctx, appointmentsKey, key, data).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: save appointment: %w", err)
	}
	if !inserted {
		return ErrSlotTaken
	}
	return nil
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/observability/metrics"
	"github.com/hsalem/barberbook/internal/reminder"
	"github.com/hsalem/barberbook/pkg/logging"
)

// Notifier pushes a reminder back to a customer on some channel. The
// payload is a single plain-text string.
type Notifier interface {
	Notify(ctx context.Context, conversationID, text string) error
}

// ReminderScheduler is the scheduling port the manager holds; the engine
// itself only ever returns a delay.
type ReminderScheduler interface {
	Arm(id string, delay time.Duration, onFire func())
}

// Manager threads conversation state through the engine, one turn at a
// time per conversation, and owns the glue the pure engine must not:
// transcripts, metrics, and arming reminders.
type Manager struct {
	engine      *engine.Engine
	transcripts TranscriptStore
	scheduler   ReminderScheduler
	metrics     *metrics.ConversationMetrics
	logger      *logging.Logger
	tracer      trace.Tracer

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	convs     map[string]*conversation
	notifiers map[engine.Channel]Notifier
}

type conversation struct {
	mu    sync.Mutex
	state engine.State
}

// NewManager creates a conversation manager. transcripts, scheduler, and
// m may be nil; the corresponding concern is then skipped.
func NewManager(e *engine.Engine, transcripts TranscriptStore, scheduler ReminderScheduler, m *metrics.ConversationMetrics, logger *logging.Logger) *Manager {
	if e == nil {
		panic("session: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		engine:      e,
		transcripts: transcripts,
		scheduler:   scheduler,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer("barberbook.internal.session"),
		Now:         func() time.Time { return time.Now().UTC() },
		convs:       make(map[string]*conversation),
		notifiers:   make(map[engine.Channel]Notifier),
	}
}

// RegisterNotifier wires the reminder delivery path for a channel.
func (m *Manager) RegisterNotifier(ch engine.Channel, n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers[ch] = n
}

// Handle runs one turn: records the user message, invokes the engine,
// records and returns the replies, and arms a reminder when the engine
// asks for one. customer pre-fills the conversation's identity (the
// WhatsApp sender number); pass "" when unknown.
func (m *Manager) Handle(ctx context.Context, conversationID string, ch engine.Channel, customer, text string) ([]engine.Message, error) {
	ctx, span := m.tracer.Start(ctx, "session.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("conversation.id", conversationID),
		attribute.String("conversation.channel", string(ch)),
	)

	conv := m.conversation(conversationID, ch, customer)

	// One in-flight turn per conversation: State has no merge semantics.
	conv.mu.Lock()
	defer conv.mu.Unlock()

	now := m.Now()
	started := time.Now()

	if text != "" {
		m.appendTranscript(ctx, conversationID, engine.Message{
			ID:        uuid.NewString(),
			Role:      engine.RoleUser,
			Text:      text,
			Timestamp: now,
		})
	}

	prev := conv.state
	res, err := m.engine.Respond(ctx, text, conv.state, ch, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	conv.state = res.Next

	for _, msg := range res.Messages {
		m.appendTranscript(ctx, conversationID, msg)
	}

	m.metrics.ObserveTurn(string(ch), string(res.Next.Phase), string(res.Next.Lang), time.Since(started).Seconds())
	if prev.Phase == engine.PhaseConfirming && res.Next.Phase == engine.PhaseDone {
		m.metrics.ObserveBooking(string(ch), prev.Service)
	}
	if prev.Phase == engine.PhaseConfirming && res.Next.Phase == engine.PhaseCollectingDate {
		m.metrics.ObserveConflict()
	}

	if res.ReminderDelay > 0 {
		m.armReminder(conversationID, ch, prev, res.ReminderDelay)
	}

	return res.Messages, nil
}

// History returns the stored transcript for a conversation.
func (m *Manager) History(ctx context.Context, conversationID string, limit int64) ([]engine.Message, error) {
	if m.transcripts == nil {
		return []engine.Message{}, nil
	}
	return m.transcripts.List(ctx, conversationID, limit)
}

// armReminder schedules delivery of the reminder for the booking that
// just confirmed. The confirming-phase state still carries the slot,
// service, and customer the engine booked.
func (m *Manager) armReminder(conversationID string, ch engine.Channel, booked engine.State, delay time.Duration) {
	if m.scheduler == nil {
		return
	}

	appt := booking.Appointment{
		DatetimeISO: booked.Slot.UTC().Format(time.RFC3339),
		Service:     booked.Service,
		Customer:    booked.Customer,
		Reminder:    true,
	}

	m.scheduler.Arm(conversationID+":"+appt.DatetimeISO, delay, func() {
		m.deliverReminder(conversationID, ch, appt)
	})
}

func (m *Manager) deliverReminder(conversationID string, ch engine.Channel, appt booking.Appointment) {
	ctx := context.Background()
	text := reminder.Message(appt)

	m.appendTranscript(ctx, conversationID, engine.Message{
		ID:        uuid.NewString(),
		Role:      engine.RoleAssistant,
		Text:      text,
		Timestamp: m.Now(),
	})

	m.mu.Lock()
	n := m.notifiers[ch]
	m.mu.Unlock()
	if n == nil {
		m.logger.Warn("reminder delivered to transcript only, no notifier for channel", "channel", ch)
		return
	}
	if err := n.Notify(ctx, conversationID, text); err != nil {
		m.logger.Error("reminder notification failed", "conversation_id", conversationID, "error", err)
	}
}

func (m *Manager) conversation(id string, ch engine.Channel, customer string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		state := engine.NewState(ch)
		state.Customer = customer
		conv = &conversation{state: state}
		m.convs[id] = conv
	}
	return conv
}

func (m *Manager) appendTranscript(ctx context.Context, conversationID string, msg engine.Message) {
	if m.transcripts == nil {
		return
	}
	if err := m.transcripts.Append(ctx, conversationID, msg); err != nil {
		m.logger.Error("transcript append failed", "conversation_id", conversationID, "error", err)
	}
}

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/pkg/logging"
)

// testNow is a Monday morning before opening.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubScheduler struct {
	ids    []string
	delays []time.Duration
	fires  []func()
}

func (s *stubScheduler) Arm(id string, delay time.Duration, onFire func()) {
	s.ids = append(s.ids, id)
	s.delays = append(s.delays, delay)
	s.fires = append(s.fires, onFire)
}

type stubNotifier struct {
	texts []string
}

func (n *stubNotifier) Notify(_ context.Context, _ string, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *stubScheduler, *MemoryTranscriptStore) {
	t.Helper()
	store := booking.NewFileStore(filepath.Join(t.TempDir(), "appointments.jsonl"))
	e := engine.New(store, logging.New("error"))
	sched := &stubScheduler{}
	transcripts := NewMemoryTranscriptStore()
	m := NewManager(e, transcripts, sched, nil, logging.New("error"))
	m.Now = func() time.Time { return testNow }
	return m, sched, transcripts
}

func runTurn(t *testing.T, m *Manager, convID, text string) []engine.Message {
	t.Helper()
	msgs, err := m.Handle(context.Background(), convID, engine.ChannelWebsite, "", text)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	return msgs
}

func TestFullBookingFlowArmsReminder(t *testing.T) {
	m, sched, transcripts := newTestManager(t)
	convID := "webchat:sess1"

	runTurn(t, m, convID, "")
	runTurn(t, m, convID, "haircut")
	runTurn(t, m, convID, "today")
	runTurn(t, m, convID, "3pm")
	runTurn(t, m, convID, "Sami")
	msgs := runTurn(t, m, convID, "yes")

	assert.Contains(t, msgs[0].Text, "Booked!")

	// Slot 15:00, now 09:00: reminder due at 12:00.
	require.Len(t, sched.ids, 1)
	assert.Equal(t, 3*time.Hour, sched.delays[0])

	history, err := transcripts.List(context.Background(), convID, 0)
	require.NoError(t, err)
	// 5 user messages (kickoff is not a message) + 6 assistant replies.
	assert.Len(t, history, 11)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp), "transcript must be monotone")
	}
}

func TestReminderFireNotifiesChannel(t *testing.T) {
	m, sched, transcripts := newTestManager(t)
	notifier := &stubNotifier{}
	m.RegisterNotifier(engine.ChannelWebsite, notifier)
	convID := "webchat:sess2"

	runTurn(t, m, convID, "")
	runTurn(t, m, convID, "shave")
	runTurn(t, m, convID, "today")
	runTurn(t, m, convID, "16:00")
	runTurn(t, m, convID, "Omar")
	runTurn(t, m, convID, "yes")

	require.Len(t, sched.fires, 1)
	sched.fires[0]()

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "Reminder")
	assert.Contains(t, notifier.texts[0], "16:00")

	history, err := transcripts.List(context.Background(), convID, 0)
	require.NoError(t, err)
	assert.Contains(t, history[len(history)-1].Text, "Reminder")
}

func TestWhatsAppIdentitySkipsContact(t *testing.T) {
	m, _, _ := newTestManager(t)
	convID := "whatsapp:+9715550001"
	turn := func(text string) []engine.Message {
		msgs, err := m.Handle(context.Background(), convID, engine.ChannelWhatsApp, "+9715550001", text)
		require.NoError(t, err)
		return msgs
	}

	turn("")
	turn("haircut")
	turn("tomorrow")
	msgs := turn("14:00")

	// Identity already known: straight to the confirmation summary.
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Text, "To confirm")
	assert.Contains(t, msgs[0].Text, "+9715550001")
}

func TestConversationsAreIsolated(t *testing.T) {
	m, _, _ := newTestManager(t)

	runTurn(t, m, "webchat:a", "")
	runTurn(t, m, "webchat:a", "haircut")
	msgs := runTurn(t, m, "webchat:b", "")

	assert.Contains(t, msgs[0].Text, "Welcome", "conversation b starts fresh")
}

func TestNoReminderWhenDeclined(t *testing.T) {
	m, sched, _ := newTestManager(t)
	convID := "webchat:sess3"

	runTurn(t, m, convID, "")
	runTurn(t, m, convID, "haircut")
	runTurn(t, m, convID, "today")
	runTurn(t, m, convID, "17:00")
	runTurn(t, m, convID, "Sami")
	runTurn(t, m, convID, "yes without reminder")

	assert.Empty(t, sched.ids)
}

package reminder

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/pkg/logging"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(logging.New("error"), nil)
}

func TestArmFires(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Arm("a1", time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestCancelPreventsFire(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Arm("a1", 20*time.Millisecond, func() { fired.Store(true) })
	s.Cancel("a1")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, s.Pending())
}

func TestRearmReplacesTimer(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	var first, second atomic.Bool
	s.Arm("a1", 10*time.Millisecond, func() { first.Store(true) })
	s.Arm("a1", 10*time.Millisecond, func() { second.Store(true) })

	time.Sleep(60 * time.Millisecond)
	assert.False(t, first.Load(), "replaced timer must not fire")
	assert.True(t, second.Load())
}

func TestRearmAll(t *testing.T) {
	store := booking.NewFileStore(filepath.Join(t.TempDir(), "appointments.jsonl"))
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	save := func(id string, at time.Time, reminder bool) {
		require.NoError(t, store.Save(ctx, booking.Appointment{
			ID:          id,
			DatetimeISO: at.Format(time.RFC3339),
			Service:     "haircut",
			Customer:    "Sami",
			Reminder:    reminder,
		}))
	}
	save("future", now.Add(5*time.Hour), true)          // armed with 2h delay
	save("inside-lead", now.Add(time.Hour), true)       // fires immediately
	save("past", now.Add(-2*time.Hour), true)           // dropped
	save("no-opt-in", now.Add(6*time.Hour), false)      // ignored
	save("other-future", now.Add(26*time.Hour), true)   // armed

	s := newTestScheduler()
	defer s.Stop()
	s.Now = func() time.Time { return now }

	armed, err := s.RearmAll(ctx, store, func(booking.Appointment) {})
	require.NoError(t, err)
	assert.Equal(t, 3, armed)
}

func TestDelayUntil(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	at := now.Add(4 * time.Hour)
	assert.Equal(t, time.Hour, DelayUntil(at, now))
	assert.True(t, DelayUntil(now.Add(time.Hour), now) < 0)
	assert.Equal(t, -engine.ReminderLead, DelayUntil(now, now))
}

func TestMessageBilingual(t *testing.T) {
	at := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	en := Message(booking.Appointment{
		DatetimeISO: at.Format(time.RFC3339),
		Service:     "haircut",
		Customer:    "Sami",
	})
	assert.Contains(t, en, "Reminder")
	assert.Contains(t, en, "haircut")
	assert.Contains(t, en, "15:00")

	ar := Message(booking.Appointment{
		DatetimeISO: at.Format(time.RFC3339),
		Service:     "haircut",
		Customer:    "سامي",
	})
	assert.Contains(t, ar, "تذكير")
	assert.Contains(t, ar, "قص الشعر")
}

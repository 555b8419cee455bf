package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/observability/metrics"
	"github.com/hsalem/barberbook/pkg/logging"
)

// Scheduler arms one-shot reminder timers. Timers are independent and
// cancellable; firing is fire-and-forget. After a process restart,
// RearmAll recomputes every delay from the persisted appointment times.
type Scheduler struct {
	logger  *logging.Logger
	metrics *metrics.ReminderMetrics

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates a reminder scheduler. metrics may be nil.
func NewScheduler(logger *logging.Logger, m *metrics.ReminderMetrics) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		logger:  logger,
		metrics: m,
		Now:     time.Now,
		timers:  make(map[string]*time.Timer),
	}
}

// Arm schedules onFire once after delay, keyed by id. Re-arming an id
// replaces its pending timer. A non-positive delay fires immediately.
func (s *Scheduler) Arm(id string, delay time.Duration, onFire func()) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.metrics.ObserveFired()
		onFire()
	})
	s.metrics.ObserveArmed()
	s.logger.Info("reminder armed", "id", id, "delay", delay.String())
}

// Cancel stops a pending timer; unknown ids are a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// RearmAll re-arms reminders for every opted-in future appointment in the
// store. An appointment already inside the lead window fires immediately
// (late delivery beats none); one whose time has passed is dropped
// silently. Returns the number of timers armed.
func (s *Scheduler) RearmAll(ctx context.Context, store booking.Store, fire func(appt booking.Appointment)) (int, error) {
	appts, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("reminder: rearm: %w", err)
	}

	now := s.Now()
	armed := 0
	for _, appt := range appts {
		if !appt.Reminder {
			continue
		}
		at, err := appt.Time()
		if err != nil {
			continue
		}
		if !at.After(now) {
			s.metrics.ObserveDropped()
			continue
		}
		s.Arm(appt.ID, at.Sub(now)-engine.ReminderLead, func() { fire(appt) })
		armed++
	}

	s.logger.Info("reminders rearmed", "armed", armed, "total", len(appts))
	return armed, nil
}

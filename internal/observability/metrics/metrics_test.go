package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConversationMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)

	m.ObserveTurn("website", "collecting_service", "en", 0.01)
	m.ObserveTurn("website", "collecting_service", "en", 0.02)
	m.ObserveBooking("whatsapp", "haircut")
	m.ObserveConflict()

	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("website", "collecting_service", "en")); got != 2 {
		t.Fatalf("turns_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("whatsapp", "haircut")); got != 1 {
		t.Fatalf("bookings_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.conflictsTotal); got != 1 {
		t.Fatalf("slot_conflicts_total = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cm *ConversationMetrics
	var rm *ReminderMetrics
	cm.ObserveTurn("website", "greeting", "en", 0)
	cm.ObserveBooking("website", "haircut")
	cm.ObserveConflict()
	rm.ObserveArmed()
	rm.ObserveFired()
	rm.ObserveDropped()
}

func TestReminderMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReminderMetrics(reg)

	m.ObserveArmed()
	m.ObserveArmed()
	m.ObserveFired()
	m.ObserveDropped()

	if got := testutil.ToFloat64(m.armedTotal); got != 2 {
		t.Fatalf("armed_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.firedTotal); got != 1 {
		t.Fatalf("fired_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.droppedTotal); got != 1 {
		t.Fatalf("dropped_total = %v, want 1", got)
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the dialogue flows.
type ConversationMetrics struct {
	turnsTotal     *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	conflictsTotal prometheus.Counter
	turnLatency    *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"channel", "phase", "lang"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "conversation",
			Name:      "bookings_total",
			Help:      "Total confirmed bookings",
		}, []string{"channel", "service"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "conversation",
			Name:      "slot_conflicts_total",
			Help:      "Bookings lost to a slot race at the store",
		}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barberbook",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one engine turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.conflictsTotal, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(channel, phase, lang string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(channel, phase, lang).Inc()
	m.turnLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *ConversationMetrics) ObserveBooking(channel, service string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(channel, service).Inc()
}

func (m *ConversationMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

// ReminderMetrics counts reminder scheduling activity.
type ReminderMetrics struct {
	armedTotal   prometheus.Counter
	firedTotal   prometheus.Counter
	droppedTotal prometheus.Counter
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		armedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "reminder",
			Name:      "armed_total",
			Help:      "Total reminder timers armed",
		}),
		firedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "reminder",
			Name:      "fired_total",
			Help:      "Total reminders delivered",
		}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "reminder",
			Name:      "dropped_total",
			Help:      "Reminders skipped because the appointment already passed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.armedTotal, m.firedTotal, m.droppedTotal)
	return m
}

func (m *ReminderMetrics) ObserveArmed() {
	if m == nil {
		return
	}
	m.armedTotal.Inc()
}

func (m *ReminderMetrics) ObserveFired() {
	if m == nil {
		return
	}
	m.firedTotal.Inc()
}

func (m *ReminderMetrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}

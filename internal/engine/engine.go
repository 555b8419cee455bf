package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hsalem/barberbook/internal/availability"
	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/language"
	"github.com/hsalem/barberbook/pkg/logging"
)

// ReminderLead is the fixed interval before an appointment at which its
// reminder is due.
const ReminderLead = 3 * time.Hour

// Engine is the booking dialogue state machine. Respond is a pure
// function of (input, state, now) except for one side effect: persisting
// the appointment on a fresh affirmative in the confirming phase.
type Engine struct {
	Store    booking.Store
	Schedule availability.Schedule
	// NewID mints message/appointment IDs. Injectable so tests can pin it.
	NewID  func() string
	Logger *logging.Logger
}

// New creates an engine over the given appointment store with the
// default shop schedule.
func New(store booking.Store, logger *logging.Logger) *Engine {
	if store == nil {
		panic("engine: appointment store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		Store:    store,
		Schedule: availability.Default(),
		NewID:    uuid.NewString,
		Logger:   logger,
	}
}

// Respond processes one conversation turn. input == "" is the kickoff
// sentinel: it greets without prior user text. now is injected for
// reproducibility; the zero value falls back to the wall clock. The
// method is total over all inputs — unrecognized text always yields a
// clarifying re-prompt, never an error. Errors are store I/O only.
func (e *Engine) Respond(ctx context.Context, input string, state State, ch Channel, now time.Time) (Result, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if ch != "" {
		state.Channel = ch
	}

	t := &turn{engine: e, ctx: ctx, state: state, input: input, now: now}

	if input == "" {
		t.kickoff()
		return t.result, nil
	}

	t.state.Lang = language.Detect(input)

	var err error
	switch t.state.Phase {
	case PhaseGreeting, PhaseCollectingService:
		t.state.Phase = PhaseCollectingService
		t.collectService()
	case PhaseCollectingDate:
		err = t.collectDate()
	case PhaseCollectingTime:
		err = t.collectTime()
	case PhaseCollectingContact:
		t.collectContact()
	case PhaseConfirming:
		err = t.confirm()
	case PhaseDone:
		t.state = t.state.resetBooking()
		t.collectService()
	default:
		// Unknown phase in a stored state: recover by restarting the
		// booking rather than failing the turn.
		t.state = t.state.resetBooking()
		t.collectService()
	}
	if err != nil {
		return Result{}, err
	}

	t.result.Next = t.state
	return t.result, nil
}

// turn carries one invocation's working data.
type turn struct {
	engine *Engine
	ctx    context.Context
	state  State
	input  string
	now    time.Time
	result Result
}

func (t *turn) say(tmpl language.Text, args ...any) {
	text := tmpl.In(t.state.Lang)
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	t.result.Messages = append(t.result.Messages, Message{
		ID:        t.engine.NewID(),
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: t.now,
	})
}

func (t *turn) kickoff() {
	if t.state.Lang == "" {
		t.state.Lang = language.English
	}
	t.state = State{
		Phase:    PhaseCollectingService,
		Channel:  t.state.Channel,
		Customer: t.state.Customer,
		Lang:     t.state.Lang,
	}
	t.say(replyGreeting, serviceList(t.state.Lang))
	t.result.Next = t.state
}

func (t *turn) collectService() {
	svc, ok := matchService(t.input)
	if !ok {
		t.say(replyServiceUnknown, serviceList(t.state.Lang))
		return
	}
	t.state.Service = svc.Key
	t.state.Phase = PhaseCollectingDate
	t.say(replyAskDate, svc.Name.In(t.state.Lang))
}

func (t *turn) collectDate() error {
	loc := t.engine.Schedule.Location
	day, ok := parseDate(t.input, t.now, loc)
	if !ok {
		t.say(replyDateUnknown)
		return nil
	}

	slots, err := t.freeSlots(day)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		t.say(replyNoSlots, formatDay(t.state.Lang, day))
		return nil
	}

	t.state.Day = day
	t.state.Offered = slots
	t.state.Phase = PhaseCollectingTime
	t.say(replyOfferSlots, formatDay(t.state.Lang, day), formatSlots(t.state.Channel, slots))
	return nil
}

func (t *turn) collectTime() error {
	if len(t.state.Offered) == 0 {
		// Stale state without an offer on the table; treat the input as
		// a date expression instead of rejecting it.
		return t.collectDate()
	}

	hour, minute, ok := parseClock(t.input)
	if !ok {
		t.say(replyTimeUnknown, formatSlots(t.state.Channel, t.state.Offered))
		return nil
	}

	candidate := slotOn(t.state.Day, hour, minute)
	if !availability.Contains(t.state.Offered, candidate) {
		t.say(replyTimeNotOffered, formatSlots(t.state.Channel, t.state.Offered))
		return nil
	}

	t.state.Slot = candidate
	if strings.TrimSpace(t.state.Customer) == "" {
		t.state.Phase = PhaseCollectingContact
		t.say(replyAskContact)
		return nil
	}
	t.askConfirmation()
	return nil
}

func (t *turn) collectContact() {
	name := strings.TrimSpace(t.input)
	if name == "" {
		t.say(replyAskContact)
		return
	}
	t.state.Customer = name
	t.askConfirmation()
}

func (t *turn) askConfirmation() {
	t.state.Phase = PhaseConfirming
	svcName := t.state.Service
	if svc, ok := ServiceByKey(t.state.Service); ok {
		svcName = svc.Name.In(t.state.Lang)
	}
	t.say(replyConfirmSummary,
		svcName,
		formatDay(t.state.Lang, t.state.Slot),
		formatClock(t.state.Slot),
		t.state.Customer,
	)
}

func (t *turn) confirm() error {
	if t.state.Slot.IsZero() {
		return t.collectDate()
	}

	switch {
	case wantsRestart(t.input):
		t.state = State{Phase: PhaseCollectingService, Channel: t.state.Channel, Lang: t.state.Lang}
		t.say(replyGreeting, serviceList(t.state.Lang))
		return nil

	case isAffirmative(t.input):
		return t.book()

	case isNegative(t.input):
		t.state = t.state.resetBooking()
		t.say(replyDeclined, serviceList(t.state.Lang))
		return nil

	default:
		t.say(replyConfirmUnclear)
		return nil
	}
}

// book persists the appointment. Runs at most once per fresh affirmative:
// success and conflict both leave the confirming phase.
func (t *turn) book() error {
	optIn := !declinesReminder(t.input)
	future := t.state.Slot.After(t.now)

	appt := booking.Appointment{
		ID:          t.engine.NewID(),
		DatetimeISO: t.state.Slot.UTC().Format(time.RFC3339),
		Service:     t.state.Service,
		Customer:    t.state.Customer,
		Reminder:    optIn && future,
	}

	err := t.engine.Store.Save(t.ctx, appt)
	if errors.Is(err, booking.ErrSlotTaken) {
		// The store's verdict beats our earlier availability check.
		t.state.Day = time.Time{}
		t.state.Slot = time.Time{}
		t.state.Offered = nil
		t.state.Phase = PhaseCollectingDate
		t.say(replySlotTaken)
		return nil
	}
	if err != nil {
		return fmt.Errorf("engine: persist booking: %w", err)
	}

	svcName := t.state.Service
	if svc, ok := ServiceByKey(t.state.Service); ok {
		svcName = svc.Name.In(t.state.Lang)
	}
	day := formatDay(t.state.Lang, t.state.Slot)
	clock := formatClock(t.state.Slot)

	if appt.Reminder {
		if delay := t.state.Slot.Sub(t.now) - ReminderLead; delay > 0 {
			t.result.ReminderDelay = delay
		}
		t.say(replyConfirmedReminder, svcName, day, clock)
	} else {
		t.say(replyConfirmedPlain, svcName, day, clock)
	}

	t.engine.Logger.Info("booking confirmed",
		"appointment_id", appt.ID,
		"service", appt.Service,
		"slot", appt.DatetimeISO,
		"channel", t.state.Channel,
		"reminder", appt.Reminder,
	)

	t.state.Phase = PhaseDone
	return nil
}

// freeSlots loads the store and resolves the open slots for the day,
// dropping any slot that is not strictly in the future.
func (t *turn) freeSlots(day time.Time) ([]time.Time, error) {
	appts, err := t.engine.Store.Load(t.ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: load appointments: %w", err)
	}
	taken := booking.TakenOn(appts, day, t.engine.Schedule.Location)
	all := t.engine.Schedule.Slots(day, taken)

	slots := make([]time.Time, 0, len(all))
	for _, s := range all {
		if s.After(t.now) {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

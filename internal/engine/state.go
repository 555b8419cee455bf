package engine

import (
	"time"

	"github.com/hsalem/barberbook/internal/language"
)

// Phase names a state of the booking dialogue.
type Phase string

const (
	PhaseGreeting          Phase = "greeting"
	PhaseCollectingService Phase = "collecting_service"
	PhaseCollectingDate    Phase = "collecting_date"
	PhaseCollectingTime    Phase = "collecting_time"
	PhaseCollectingContact Phase = "collecting_contact"
	PhaseConfirming        Phase = "confirming"
	PhaseDone              Phase = "done"
)

// Channel identifies where the conversation happens. It may alter
// phrasing but never the state machine's transitions.
type Channel string

const (
	ChannelWebsite  Channel = "website"
	ChannelWhatsApp Channel = "whatsapp"
)

// Role distinguishes who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation transcript. Immutable once
// created; transcripts are append-only.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the dialogue's memory. It is a value: each turn consumes one
// state and produces the next, so the engine itself holds nothing between
// turns.
type State struct {
	Phase   Phase   `json:"phase"`
	Channel Channel `json:"channel"`

	// Collected booking slots, each empty/zero until filled.
	Service  string    `json:"service,omitempty"`
	Day      time.Time `json:"day,omitempty"`
	Slot     time.Time `json:"slot,omitempty"`
	Customer string    `json:"customer,omitempty"`

	// Offered holds the slot set presented in the last availability
	// listing; CollectingTime only accepts a member of this set.
	Offered []time.Time `json:"offered,omitempty"`

	// Lang is the language of the latest user message. Advisory; it can
	// flip turn to turn when the user switches scripts.
	Lang language.Lang `json:"lang,omitempty"`
}

// NewState creates the initial state for a fresh conversation.
func NewState(ch Channel) State {
	return State{Phase: PhaseGreeting, Channel: ch, Lang: language.English}
}

// resetBooking discards collected booking slots while keeping the
// customer's identity and channel.
func (s State) resetBooking() State {
	return State{
		Phase:    PhaseCollectingService,
		Channel:  s.Channel,
		Customer: s.Customer,
		Lang:     s.Lang,
	}
}

// Result is the outcome of one engine turn.
type Result struct {
	// Messages are the assistant's replies, in display order.
	Messages []Message
	// Next replaces the conversation's state.
	Next State
	// ReminderDelay, when positive, asks the caller to arm a one-shot
	// reminder that many units from now. Zero means no reminder.
	ReminderDelay time.Duration
}

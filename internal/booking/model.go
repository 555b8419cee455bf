package booking

import (
	"context"
	"errors"
	"time"
)

// ErrSlotTaken is returned by Save when the appointment's slot is already
// occupied. The store's verdict is authoritative: callers must treat it as
// final even when their own availability pre-check passed.
var ErrSlotTaken = errors.New("booking: slot already taken")

// Appointment is a persisted booking. Records are append-only; nothing
// mutates an appointment after creation.
type Appointment struct {
	ID          string `json:"id"`
	DatetimeISO string `json:"datetimeIso"`
	Service     string `json:"service"`
	Customer    string `json:"customer"`
	Reminder    bool   `json:"reminder"`
}

// Time parses the appointment's RFC 3339 datetime.
func (a Appointment) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, a.DatetimeISO)
}

// SlotKey returns the canonical slot identity for the appointment: the
// UTC RFC 3339 rendering of its start instant. Two appointments share a
// slot iff their keys are equal.
func (a Appointment) SlotKey() (string, error) {
	t, err := a.Time()
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

// Store is the appointment persistence contract. Load returns all
// readable records in no guaranteed order; callers sort. Save appends one
// record and fails with ErrSlotTaken when the slot is occupied — the
// check-and-insert is atomic at the store boundary, so two concurrent
// saves for one slot yield exactly one success.
type Store interface {
	Load(ctx context.Context) ([]Appointment, error)
	Save(ctx context.Context, appt Appointment) error
}

// TakenOn extracts the booked slot start times falling on the given
// calendar day (in loc). Records with unparsable datetimes are skipped.
func TakenOn(appts []Appointment, day time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	day = day.In(loc)
	y, m, d := day.Date()

	var taken []time.Time
	for _, a := range appts {
		t, err := a.Time()
		if err != nil {
			continue
		}
		t = t.In(loc)
		ty, tm, td := t.Date()
		if ty == y && tm == m && td == d {
			taken = append(taken, t)
		}
	}
	return taken
}

package availability

import "time"

// Schedule describes the shop's fixed daily slot template: slots start on
// the hour between OpenHour (inclusive) and CloseHour (exclusive), and the
// shop is closed one fixed weekday.
type Schedule struct {
	OpenHour      int
	CloseHour     int
	SlotEvery     time.Duration
	ClosedWeekday time.Weekday
	Location      *time.Location
}

// Default returns the standard shop schedule: hourly slots 11:00-20:00,
// closed on Sundays, times in UTC.
func Default() Schedule {
	return Schedule{
		OpenHour:      11,
		CloseHour:     20,
		SlotEvery:     time.Hour,
		ClosedWeekday: time.Sunday,
		Location:      time.UTC,
	}
}

// Slots returns the free slot start times on the given calendar day, in
// chronological order. taken holds the start times of existing bookings;
// any template slot equal to one of them is excluded. A closed day or a
// fully booked day yields an empty result, never an error.
func (s Schedule) Slots(day time.Time, taken []time.Time) []time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	if s.SlotEvery <= 0 || s.CloseHour <= s.OpenHour {
		return nil
	}

	day = day.In(loc)
	if day.Weekday() == s.ClosedWeekday {
		return nil
	}

	open := time.Date(day.Year(), day.Month(), day.Day(), s.OpenHour, 0, 0, 0, loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), s.CloseHour, 0, 0, 0, loc)

	var slots []time.Time
	for t := open; t.Before(close); t = t.Add(s.SlotEvery) {
		if occupied(t, taken) {
			continue
		}
		slots = append(slots, t)
	}
	return slots
}

// Contains reports whether candidate is one of the offered slots.
// Comparison is by instant, so callers may mix locations.
func Contains(slots []time.Time, candidate time.Time) bool {
	for _, s := range slots {
		if s.Equal(candidate) {
			return true
		}
	}
	return false
}

func occupied(slot time.Time, taken []time.Time) bool {
	for _, t := range taken {
		if slot.Equal(t) {
			return true
		}
	}
	return false
}

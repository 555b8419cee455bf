package engine

import (
	"regexp"
	"strconv"
	"time"
)

var (
	pmTokens = []string{"pm", "مساء", "مساءا", "مساءً", "عصرا", "عصراً", "العصر", "المساء", "بعد الظهر", "الظهر", "ظهرا", "ظهراً"}
	amTokens = []string{"am", "صباحا", "صباحاً", "الصبح", "صباح"}
)

var clockRe = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// parseClock extracts a time of day from free-form text. Accepts "15:00",
// "3pm", "3:30 pm", bare hours, and Arabic am/pm markers; Arabic-Indic
// digits are normalized first. A bare hour of 8 or less with no marker is
// read as afternoon, since the shop opens at 11.
func parseClock(text string) (hour, minute int, ok bool) {
	norm := normalize(normalizeDigits(text))

	m := clockRe.FindStringSubmatch(norm)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}

	switch {
	case m[3] == "pm" || containsAnyToken(norm, pmTokens):
		if hour < 12 {
			hour += 12
		}
	case m[3] == "am" || containsAnyToken(norm, amTokens):
		if hour == 12 {
			hour = 0
		}
	default:
		if hour >= 1 && hour <= 8 {
			hour += 12
		}
	}
	return hour, minute, true
}

// slotOn combines a calendar day with a wall-clock time in the day's
// location.
func slotOn(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

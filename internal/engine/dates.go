package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Relative-day and weekday vocabularies. Weekday matching picks the
// nearest future occurrence, counting today as a candidate.
var (
	todayTokens         = []string{"today", "tonight", "اليوم", "الليلة"}
	tomorrowTokens      = []string{"tomorrow", "غدا", "غداً", "بكرة", "بكره"}
	afterTomorrowTokens = []string{"day after tomorrow", "بعد غد", "بعد بكرة", "بعد بكره"}

	weekdayTokens = map[time.Weekday][]string{
		time.Sunday:    {"sunday", "sun", "الاحد", "الأحد", "احد"},
		time.Monday:    {"monday", "mon", "الاثنين", "الإثنين", "اثنين"},
		time.Tuesday:   {"tuesday", "tue", "tues", "الثلاثاء", "ثلاثاء"},
		time.Wednesday: {"wednesday", "wed", "الاربعاء", "الأربعاء", "اربعاء"},
		time.Thursday:  {"thursday", "thu", "thurs", "الخميس", "خميس"},
		time.Friday:    {"friday", "fri", "الجمعة", "جمعة", "جمعه"},
		time.Saturday:  {"saturday", "sat", "السبت", "سبت"},
	}
)

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
)

// parseDate extracts a calendar day from free-form text in either
// language. Relative terms, weekday names, ISO dates, and day/month
// forms are recognized; ambiguous expressions resolve to the nearest
// future occurrence. The returned day is midnight in loc.
func parseDate(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := midnight(now)
	norm := normalize(normalizeDigits(text))

	if containsAnyToken(norm, afterTomorrowTokens) {
		return today.AddDate(0, 0, 2), true
	}
	if containsAnyToken(norm, tomorrowTokens) {
		return today.AddDate(0, 0, 1), true
	}
	if containsAnyToken(norm, todayTokens) {
		return today, true
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if containsAnyToken(norm, weekdayTokens[wd]) {
			ahead := (int(wd) - int(today.Weekday()) + 7) % 7
			return today.AddDate(0, 0, ahead), true
		}
	}

	if m := isoDateRe.FindStringSubmatch(norm); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if d, ok := calendarDay(year, month, day, loc); ok {
			return d, true
		}
	}

	if m := slashDateRe.FindStringSubmatch(norm); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ := strconv.Atoi(m[3])
			if d, ok := calendarDay(year, month, day, loc); ok {
				return d, true
			}
			return time.Time{}, false
		}
		// No year: nearest future occurrence.
		if d, ok := calendarDay(today.Year(), month, day, loc); ok {
			if !d.Before(today) {
				return d, true
			}
			if next, ok := calendarDay(today.Year()+1, month, day, loc); ok {
				return next, true
			}
		}
	}

	return time.Time{}, false
}

// normalizeDigits maps Arabic-Indic digits to ASCII so one set of
// numeric patterns serves both scripts.
func normalizeDigits(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩': // Arabic-Indic
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹': // Extended Arabic-Indic
			return '0' + (r - '۰')
		}
		return r
	}, text)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDay validates that y/m/d is a real date (rejecting normalized
// overflow like 31/2) and returns its midnight in loc.
func calendarDay(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

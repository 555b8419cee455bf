package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/hsalem/barberbook/internal/language"
)

// Reply templates. Every user-facing string carries both renderings; the
// turn's detected language picks one at format time.
var (
	replyGreeting = language.Text{
		AR: "أهلاً بك في صالون الحلاقة! أي خدمة تحب أن تحجز: %s؟",
		EN: "Welcome to BarberBook! Which service would you like: %s?",
	}
	replyServiceUnknown = language.Text{
		AR: "عذراً، لم أفهم طلبك. خدماتنا هي: %s. أي خدمة تناسبك؟",
		EN: "Sorry, I didn't catch that. We offer: %s. Which one would you like?",
	}
	replyAskDate = language.Text{
		AR: "ممتاز، اخترت %s. أي يوم يناسبك؟ يمكنك قول اليوم أو غداً أو تاريخ محدد.",
		EN: "Great choice — %s. What day works for you? You can say today, tomorrow, a weekday, or a date.",
	}
	replyDateUnknown = language.Text{
		AR: "لم أتمكن من فهم التاريخ. جرّب \"اليوم\" أو \"غداً\" أو اسم يوم أو تاريخاً مثل 2026-03-15.",
		EN: "I couldn't understand that date. Try \"today\", \"tomorrow\", a weekday, or a date like 2026-03-15.",
	}
	replyNoSlots = language.Text{
		AR: "للأسف لا توجد مواعيد متاحة يوم %s. هل تختار يوماً آخر؟",
		EN: "Sorry, there are no free slots on %s. Could you pick another day?",
	}
	replyOfferSlots = language.Text{
		AR: "المواعيد المتاحة يوم %s: %s. أي وقت يناسبك؟",
		EN: "Available times on %s: %s. Which time suits you?",
	}
	replyTimeUnknown = language.Text{
		AR: "لم أفهم الوقت. الأوقات المتاحة: %s.",
		EN: "I couldn't read that time. Available times: %s.",
	}
	replyTimeNotOffered = language.Text{
		AR: "هذا الموعد غير متاح. الأوقات المتاحة: %s.",
		EN: "That time isn't available. Free times: %s.",
	}
	replyAskContact = language.Text{
		AR: "ما اسمك لإتمام الحجز؟",
		EN: "May I have your name to complete the booking?",
	}
	replyConfirmSummary = language.Text{
		AR: "للتأكيد: %s يوم %s الساعة %s باسم %s. هل أؤكد الحجز؟ (نعم/لا) سنذكّرك قبل الموعد بثلاث ساعات — قل \"نعم بدون تذكير\" إن لم ترغب بالتذكير.",
		EN: "To confirm: %s on %s at %s for %s. Shall I book it? (yes/no) We'll remind you 3 hours before — say \"yes without reminder\" to skip the reminder.",
	}
	replyConfirmedReminder = language.Text{
		AR: "تم الحجز! %s يوم %s الساعة %s. سنذكّرك قبل الموعد بثلاث ساعات. نراك قريباً!",
		EN: "Booked! %s on %s at %s. We'll remind you 3 hours before. See you soon!",
	}
	replyConfirmedPlain = language.Text{
		AR: "تم الحجز! %s يوم %s الساعة %s. نراك قريباً!",
		EN: "Booked! %s on %s at %s. See you soon!",
	}
	replySlotTaken = language.Text{
		AR: "عذراً، تم حجز هذا الموعد للتو. هل نختار يوماً آخر؟",
		EN: "Sorry — that slot was just taken. Let's pick another day.",
	}
	replyDeclined = language.Text{
		AR: "لا بأس، لنبدأ من جديد. أي خدمة تحب: %s؟",
		EN: "No problem, let's start over. Which service would you like: %s?",
	}
	replyConfirmUnclear = language.Text{
		AR: "الرجاء الرد بنعم أو لا.",
		EN: "Please reply yes or no.",
	}
)

var arabicWeekdays = [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"}

// formatDay renders a calendar day with a localized weekday name.
func formatDay(lang language.Lang, day time.Time) string {
	if lang == language.Arabic {
		return fmt.Sprintf("%s %s", arabicWeekdays[day.Weekday()], day.Format("2006-01-02"))
	}
	return day.Format("Monday, 2 Jan 2006")
}

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

// formatSlots lists slot times. WhatsApp gets a bulleted list, the web
// widget an inline one; phrasing only, never transition logic.
func formatSlots(ch Channel, slots []time.Time) string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, formatClock(s))
	}
	if ch == ChannelWhatsApp {
		return "\n- " + strings.Join(times, "\n- ")
	}
	return strings.Join(times, ", ")
}

// serviceList enumerates the vocabulary in the reply language.
func serviceList(lang language.Lang) string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name.In(lang))
	}
	sep := ", "
	if lang == language.Arabic {
		sep = "، "
	}
	return strings.Join(names, sep)
}

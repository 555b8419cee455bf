package reminder

import (
	"fmt"
	"time"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/language"
)

var reminderText = language.Text{
	AR: "تذكير: موعدك (%s) الساعة %s يوم %s. نراك قريباً!",
	EN: "Reminder: your %s appointment is at %s on %s. See you soon!",
}

// Message renders the bilingual reminder for an appointment. The language
// is detected from the customer's recorded name/contact, using the same
// detection contract as the dialogue.
func Message(appt booking.Appointment) string {
	lang := language.Detect(appt.Customer)

	svcName := appt.Service
	if svc, ok := engine.ServiceByKey(appt.Service); ok {
		svcName = svc.Name.In(lang)
	}

	at, err := appt.Time()
	if err != nil {
		return fmt.Sprintf(reminderText.In(lang), svcName, "", appt.DatetimeISO)
	}
	return fmt.Sprintf(reminderText.In(lang), svcName, at.Format("15:04"), at.Format("2006-01-02"))
}

// DelayUntil computes the reminder delay for an appointment time: the
// fixed lead before the appointment, measured from now. Non-positive
// results mean the reminder is due immediately or no longer relevant.
func DelayUntil(at, now time.Time) time.Duration {
	return at.Sub(now) - engine.ReminderLead
}

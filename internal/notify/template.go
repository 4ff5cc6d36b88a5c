package notify

import "fmt"

// Render produces the subject and HTML body for a notification kind. The
// templates are deliberately plain; transactional mail for a four-seat
// studio does not need a layout engine.
func Render(kind Kind, data map[string]string) (subject, html string) {
	name := data[DataName]
	date := data[DataDate]
	tod := data[DataTime]
	category := data[DataCategory]
	switch kind {
	case KindBookingConfirmed:
		subject = fmt.Sprintf("Booking confirmed: %s on %s at %s", category, date, tod)
		html = fmt.Sprintf("<p>Hi %s,</p><p>Your booking for the %s session on %s at %s is confirmed (%s seat(s)).</p><p>You can cancel free of charge up to 24 hours before the session starts.</p>",
			name, category, date, tod, data[DataGroupSize])
	case KindBookingReceived:
		subject = fmt.Sprintf("New booking: %s on %s at %s", category, date, tod)
		html = fmt.Sprintf("<p>%s booked %s seat(s) in the %s session on %s at %s.</p>",
			name, data[DataGroupSize], category, date, tod)
	case KindBookingCancelled:
		subject = fmt.Sprintf("Booking cancelled: %s on %s at %s", category, date, tod)
		html = fmt.Sprintf("<p>Hi %s,</p><p>Your booking for the %s session on %s at %s has been cancelled.</p>",
			name, category, date, tod)
	case KindSessionCancelled:
		subject = fmt.Sprintf("Session cancelled: %s on %s at %s", category, date, tod)
		html = fmt.Sprintf("<p>Hi %s,</p><p>The %s session on %s at %s has been cancelled by the studio. Your booking was removed.</p>",
			name, category, date, tod)
	case KindSessionReminder:
		subject = fmt.Sprintf("Reminder: your %s session starts in 2 hours", category)
		html = fmt.Sprintf("<p>Hi %s,</p><p>Your %s session starts today at %s. See you there!</p>",
			name, category, tod)
	case KindPackageGranted:
		subject = "Your training package is active"
		html = fmt.Sprintf("<p>Hi %s,</p><p>A package of %s sessions has been added to your account, valid until %s.</p>",
			name, data[DataSessions], data[DataExpiry])
	default:
		subject = "Notification"
		html = "<p>You have a new notification from the studio.</p>"
	}
	return subject, html
}

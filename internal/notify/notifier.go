// Package notify defines the outbound notification capability. Booking
// flows and the reminder scheduler talk to a Notifier and treat every
// failure as non-fatal: errors are logged by the caller and never roll
// back committed booking state. The production Notifier publishes events
// to the message queue; actual email delivery happens in the background
// consumer via a Sender.
package notify

import "context"

// Kind selects the email template for a notification.
type Kind string

const (
	KindBookingConfirmed Kind = "booking.confirmed" // to the client after a successful booking
	KindBookingReceived  Kind = "booking.received"  // to the session's admin after a booking
	KindBookingCancelled Kind = "booking.cancelled" // to the client after a cancellation
	KindSessionCancelled Kind = "session.cancelled" // to each client when an admin deletes a session
	KindSessionReminder  Kind = "session.reminder"  // to the client 2 hours before start
	KindPackageGranted   Kind = "package.granted"   // to the client when an admin grants a package
)

// Data keys shared by the templates.
const (
	DataName      = "name"
	DataDate      = "date"
	DataTime      = "time"
	DataCategory  = "category"
	DataGroupSize = "group_size"
	DataSessions  = "sessions"
	DataExpiry    = "expiry"
)

// Notifier dispatches one notification to one recipient. Implementations
// must be safe for concurrent use; callers bound each call with a context
// timeout so a stuck dispatch cannot block a scheduler tick.
type Notifier interface {
	Notify(ctx context.Context, recipient string, kind Kind, data map[string]string) error
}

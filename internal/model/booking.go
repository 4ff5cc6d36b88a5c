package model

import "time"

// Booking status values.  Confirmed bookings count against a session's
// capacity.  Cancellation deletes the row outright; the CANCELLED value
// exists so that status filtering stays explicit in every capacity query.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is a client's reservation of one or more seats in a Session.
// GroupSize is the number of seats the booking consumes (1..4), not
// necessarily the number of distinct people.  CancelDeadline is computed
// once at creation from the session's combined start instant and never
// recomputed if the session is later edited.
//
// Package-mode bookings additionally carry the client's package reference
// and the 1..8 ordinal position of this booking within that package.
type Booking struct {
	ID             uint64     // bookings.id
	SessionID      uint64     // bookings.session_id
	UserID         uint64     // bookings.user_id
	GroupSize      uint8      // bookings.group_size
	Status         string     // bookings.status
	Notes          string     // bookings.notes
	PackageRef     *string    // bookings.package_ref (nullable; UUID of the client's package)
	PackageOrdinal *uint8     // bookings.package_ordinal (nullable; 1..8)
	CancelDeadline time.Time  // bookings.cancel_deadline (UTC)
	ReminderSentAt *time.Time // bookings.reminder_sent_at (nullable; set exactly once)
	CreatedAt      time.Time  // bookings.created_at
	UpdatedAt      time.Time  // bookings.updated_at
}

// IsPackage reports whether the booking was drawn against a package.
func (b *Booking) IsPackage() bool { return b.PackageRef != nil }

// ReminderItem is one row of the reminder scan: a confirmed booking joined
// with its session schedule and the client's contact details.  The
// scheduler claims the booking's reminder marker before dispatching.
type ReminderItem struct {
	BookingID   uint64
	SessionID   uint64
	Email       string
	FullName    string
	SessionDate string // "2006-01-02"
	StartTime   string // "HH:MM"
	Category    string
}

// Package policy contains the pure booking decisions: whether a prospective
// booking fits a session's capacity and whether an actor may cancel an
// existing booking.  The functions take all state as arguments so they can
// run inside a repository transaction or a unit test unchanged.
package policy

import (
	"errors"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
)

// Sentinel errors surfaced to handlers via errors.Is.  Each aborts the
// operation with no partial state change.
var (
	// ErrCapacityExceeded means the requested group size does not fit in
	// the session's remaining seats.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrSessionInactive means the session was soft-deleted and accepts no
	// new bookings.
	ErrSessionInactive = errors.New("session inactive")
	// ErrInvalidGroupSize means the group size is outside 1..4.
	ErrInvalidGroupSize = errors.New("group size must be between 1 and 4")
	// ErrCancellationWindowClosed means a client tried to cancel less than
	// 24 hours before the session start.
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
)

// MaxGroupSize bounds the seats a single booking may consume.
const MaxGroupSize = 4

// CanBook validates a prospective booking of groupSize seats against the
// session, given the seats already occupied by confirmed bookings.  The
// caller must obtain occupied under the same lock/transaction that will
// perform the insert, otherwise two concurrent requests can both pass.
func CanBook(s *model.Session, occupied uint32, groupSize uint8) error {
	if groupSize < 1 || groupSize > MaxGroupSize {
		return ErrInvalidGroupSize
	}
	if !s.IsActive {
		return ErrSessionInactive
	}
	if occupied+uint32(groupSize) > uint32(s.MaxCapacity) {
		return ErrCapacityExceeded
	}
	return nil
}

// CanCancel decides whether the actor may cancel a booking at now.  Admins
// may always cancel; clients only strictly before the booking's deadline.
// The deadline was fixed at booking creation (start - 24h) and is not
// recomputed here.
func CanCancel(deadline time.Time, actorRole string, now time.Time) error {
	if actorRole == model.RoleAdmin {
		return nil
	}
	if !now.Before(deadline) {
		return ErrCancellationWindowClosed
	}
	return nil
}

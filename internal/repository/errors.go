// Package repository defines sentinel error values shared across the
// repositories. They let handlers distinguish failure scenarios with
// errors.Is and map them onto HTTP statuses: not-found to 404, duplicate
// session to 409. Capacity and cancellation-window errors live in the
// policy package because they are business decisions, not storage
// outcomes; ownership checks happen in handlers, which hold both the
// actor and the record.
package repository

import "errors"

// ErrSessionNotFound is returned when no session row matches the given ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrBookingNotFound is returned when no booking row matches the given ID.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user row matches the given ID or email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateSession is returned when an active session already exists at
// the exact same date and time. Handlers translate it into HTTP 409.
var ErrDuplicateSession = errors.New("session already exists at this time")

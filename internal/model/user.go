package model

import "time"

// Roles carried in the JWT "role" claim and the users.role column.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// User is an account on the platform.  Clients carry package state inline:
// ActivePackageSessions counts package-mode bookings drawn against the
// current package (incremented per booking, decremented per cancellation,
// clamped at zero), and PackageExpiresAt is overwritten, not extended,
// to now+packageDays on every package booking or grant.
type User struct {
	ID                    uint64     // users.id
	Email                 string     // users.email
	FullName              string     // users.full_name
	Role                  string     // users.role
	ActivePackageSessions uint8      // users.active_package_sessions
	PackageRef            *string    // users.package_ref (nullable; UUID of the current package)
	PackageExpiresAt      *time.Time // users.package_expires_at (nullable, UTC)
	CreatedAt             time.Time  // users.created_at
	UpdatedAt             time.Time  // users.updated_at
}

// PackageState is the snapshot returned by the admin grant/reset
// operations and embedded in client-facing responses.
type PackageState struct {
	ActiveSessions uint8      `json:"active_sessions"`
	PackageRef     *string    `json:"package_ref,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

package model

import "time"

// Categories form the closed set of exercise types a session may carry.
// The DB enforces the same set via an ENUM column.
const (
	CategoryStrength = "STRENGTH"
	CategoryCardio   = "CARDIO"
	CategoryMobility = "MOBILITY"
	CategoryHIIT     = "HIIT"
)

// ValidCategory reports whether s is one of the known exercise categories.
func ValidCategory(s string) bool {
	switch s {
	case CategoryStrength, CategoryCardio, CategoryMobility, CategoryHIIT:
		return true
	}
	return false
}

// Session represents an admin-scheduled training slot with a fixed seat
// capacity.  The calendar date and the time of day are stored separately,
// mirroring the sessions table: SessionDate as "2006-01-02" and StartTime
// as "HH:MM" (no seconds, no timezone; all times are UTC).
//
// Fields:
//  ID                – primary key identifier.
//  AdminID           – user ID of the admin who created the session.
//  SessionDate       – calendar date ("2006-01-02").
//  StartTime         – time of day ("HH:MM").
//  Category          – one of the Category* constants.
//  MaxCapacity       – seat bound, 1..4, fixed at creation.
//  IsActive          – soft-delete flag honoured by queries.
//  PriceCents        – per-session price, stamped from config at creation.
//  PackagePriceCents – 8-session package price, stamped from config.
//  PackageDays       – package validity in days (default 90).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Session struct {
	ID                uint64    // sessions.id
	AdminID           uint64    // sessions.admin_id
	SessionDate       string    // sessions.session_date
	StartTime         string    // sessions.start_time
	Category          string    // sessions.category
	MaxCapacity       uint8     // sessions.max_capacity
	IsActive          bool      // sessions.is_active
	PriceCents        uint32    // sessions.price_cents
	PackagePriceCents uint32    // sessions.package_price_cents
	PackageDays       uint16    // sessions.package_days
	CreatedAt         time.Time // sessions.created_at
	UpdatedAt         time.Time // sessions.updated_at
}

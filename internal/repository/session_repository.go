// Package repository contains the data access layer. This file covers the
// sessions table. Session rows keep the calendar date and the "HH:MM"
// time of day in separate columns; queries that need the absolute start
// instant combine them in SQL with STR_TO_DATE. All timestamps are UTC.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
)

// SessionRepo manages persistence for training sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionCols = `id, admin_id, session_date, start_time, category, max_capacity,
                     is_active, price_cents, package_price_cents, package_days, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }, s *model.Session) error {
	var date time.Time
	err := row.Scan(&s.ID, &s.AdminID, &date, &s.StartTime, &s.Category, &s.MaxCapacity,
		&s.IsActive, &s.PriceCents, &s.PackagePriceCents, &s.PackageDays, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	s.SessionDate = date.UTC().Format("2006-01-02")
	return nil
}

// Create inserts a new session unless an active session already exists at
// the same date and time. The existence check and the insert run in one
// transaction so two concurrent creates for the same slot cannot both
// succeed; a unique index on (session_date, start_time, is_active) backs
// the check. On success the generated ID and DB defaults are populated
// on the given session.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var exists int
	const dup = `SELECT COUNT(*) FROM sessions WHERE session_date = ? AND start_time = ? AND is_active = 1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, dup, s.SessionDate, s.StartTime).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return ErrDuplicateSession
	}
	const q = `INSERT INTO sessions (admin_id, session_date, start_time, category, max_capacity,
	                                 price_cents, package_price_cents, package_days)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.AdminID, s.SessionDate, s.StartTime, s.Category,
		s.MaxCapacity, s.PriceCents, s.PackagePriceCents, s.PackageDays)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ?`
	if err := scanSession(tx.QueryRowContext(ctx, sel, s.ID), s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a session by its ID. It returns ErrSessionNotFound
// when no matching row exists.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ?`
	var s model.Session
	if err := scanSession(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetForUpdateTx loads a session inside the given transaction with a row
// lock (SELECT ... FOR UPDATE). The lock serialises concurrent bookings
// per session: the capacity read and the booking insert that follow see a
// stable occupied count until the transaction commits.
func (r *SessionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ? FOR UPDATE`
	var s model.Session
	if err := scanSession(tx.QueryRowContext(ctx, q, id), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListUpcoming returns active sessions whose combined start instant is at
// or after the given time, ordered by start ascending.
func (r *SessionRepo) ListUpcoming(ctx context.Context, from time.Time) ([]model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions
	           WHERE is_active = 1
	             AND STR_TO_DATE(CONCAT(session_date, ' ', start_time), '%Y-%m-%d %H:%i') >= ?
	           ORDER BY session_date, start_time`
	rows, err := r.db.QueryContext(ctx, q, from.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListAll returns every session, newest first, for the admin overview.
func (r *SessionRepo) ListAll(ctx context.Context) ([]model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions ORDER BY session_date DESC, start_time DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteTx removes a session row inside the given transaction. Bookings
// must be deleted first by the caller; the cascade is enforced by the
// orchestrating handler, not the store.
func (r *SessionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings plus the reminder
// claim used by the scheduler. Capacity-sensitive methods come in *Tx
// form only: the occupied-seat read and the insert must share the
// transaction that holds the session row lock.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, session_id, user_id, group_size, status, notes,
                     package_ref, package_ordinal, cancel_deadline, reminder_sent_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	var (
		notes    sql.NullString
		ref      sql.NullString
		ordinal  sql.NullInt16
		reminded sql.NullTime
	)
	err := row.Scan(&b.ID, &b.SessionID, &b.UserID, &b.GroupSize, &b.Status, &notes,
		&ref, &ordinal, &b.CancelDeadline, &reminded, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}
	b.Notes = notes.String
	if ref.Valid {
		v := ref.String
		b.PackageRef = &v
	}
	if ordinal.Valid {
		v := uint8(ordinal.Int16)
		b.PackageOrdinal = &v
	}
	if reminded.Valid {
		v := reminded.Time.UTC()
		b.ReminderSentAt = &v
	}
	return nil
}

// OccupiedTx returns the seats consumed by confirmed bookings of a session,
// summing group sizes. It must run in the same transaction that locked the
// session row, otherwise the count can go stale before the insert.
func (r *BookingRepo) OccupiedTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(group_size), 0) FROM bookings WHERE session_id = ? AND status = ?`
	var occupied uint32
	if err := tx.QueryRowContext(ctx, q, sessionID, model.BookingConfirmed).Scan(&occupied); err != nil {
		return 0, err
	}
	return occupied, nil
}

// OccupiedBySessions returns confirmed seat counts keyed by session ID.
// Sessions without confirmed bookings are absent from the map. Used by the
// public listing; the authoritative check at booking time is OccupiedTx.
func (r *BookingRepo) OccupiedBySessions(ctx context.Context) (map[uint64]uint32, error) {
	const q = `SELECT session_id, SUM(group_size) FROM bookings WHERE status = ? GROUP BY session_id`
	rows, err := r.db.QueryContext(ctx, q, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occupied := make(map[uint64]uint32)
	for rows.Next() {
		var (
			id uint64
			n  uint32
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		occupied[id] = n
	}
	return occupied, rows.Err()
}

// CreateTx inserts a confirmed booking within the given transaction and
// populates the generated ID and DB defaults on the record. The caller
// has already validated capacity under the session row lock and computed
// the cancellation deadline.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (session_id, user_id, group_size, status, notes,
	                                 package_ref, package_ordinal, cancel_deadline)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var notes any
	if b.Notes != "" {
		notes = b.Notes
	}
	res, err := tx.ExecContext(ctx, q, b.SessionID, b.UserID, b.GroupSize, b.Status, notes,
		b.PackageRef, b.PackageOrdinal, b.CancelDeadline.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	return scanBooking(tx.QueryRowContext(ctx, sel, b.ID), b)
}

// GetTx loads a booking by ID inside the given transaction with a row
// lock, returning ErrBookingNotFound when it does not exist. Cancellation
// flows lock the row so a concurrent cancel of the same booking blocks
// until the first transaction settles.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	if err := scanBooking(tx.QueryRowContext(ctx, q, id), &b); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// DeleteTx removes a booking row outright. Cancellation is a hard delete;
// the CANCELLED status value is not written, only filtered on.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ConfirmedBySessionTx returns the confirmed bookings of a session joined
// with each client's contact details, for the cascade-delete notification
// fan-out. Runs inside the caller's transaction.
func (r *BookingRepo) ConfirmedBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]model.ReminderItem, error) {
	const q = `SELECT b.id, b.session_id, u.email, u.full_name, s.session_date, s.start_time, s.category
	           FROM bookings b
	           JOIN users u ON u.id = b.user_id
	           JOIN sessions s ON s.id = b.session_id
	           WHERE b.session_id = ? AND b.status = ?`
	rows, err := tx.QueryContext(ctx, q, sessionID, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ReminderItem, 0)
	for rows.Next() {
		var it model.ReminderItem
		var date time.Time
		if err := rows.Scan(&it.BookingID, &it.SessionID, &it.Email, &it.FullName, &date, &it.StartTime, &it.Category); err != nil {
			return nil, err
		}
		it.SessionDate = date.UTC().Format("2006-01-02")
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteBySessionTx removes every booking of a session and returns how
// many rows were deleted.
func (r *BookingRepo) DeleteBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BookingDetail is a booking joined with its session schedule, returned by
// the listing endpoints.
type BookingDetail struct {
	ID             uint64  `json:"id"`
	SessionID      uint64  `json:"session_id"`
	UserID         uint64  `json:"user_id"`
	GroupSize      uint8   `json:"group_size"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes,omitempty"`
	PackageRef     *string `json:"package_ref,omitempty"`
	PackageOrdinal *uint8  `json:"package_ordinal,omitempty"`
	CancelDeadline string  `json:"cancel_deadline"`
	CanStillCancel bool    `json:"can_still_cancel"`
	SessionDate    string  `json:"session_date"`
	StartTime      string  `json:"start_time"`
	Category       string  `json:"category"`
}

// ListByUser returns the user's bookings with session details, newest
// first. CanStillCancel is derived against the current UTC time.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.session_id, b.user_id, b.group_size, b.status, b.notes,
	                  b.package_ref, b.package_ordinal, b.cancel_deadline,
	                  s.session_date, s.start_time, s.category
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, userID)
}

// ListBySession returns every booking of a session for the admin view.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.session_id, b.user_id, b.group_size, b.status, b.notes,
	                  b.package_ref, b.package_ordinal, b.cancel_deadline,
	                  s.session_date, s.start_time, s.category
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           WHERE b.session_id = ?
	           ORDER BY b.created_at`
	return r.listDetails(ctx, q, sessionID)
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, arg uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d        BookingDetail
			notes    sql.NullString
			ref      sql.NullString
			ordinal  sql.NullInt16
			deadline time.Time
			date     time.Time
		)
		if err := rows.Scan(&d.ID, &d.SessionID, &d.UserID, &d.GroupSize, &d.Status, &notes,
			&ref, &ordinal, &deadline, &date, &d.StartTime, &d.Category); err != nil {
			return nil, err
		}
		d.Notes = notes.String
		if ref.Valid {
			v := ref.String
			d.PackageRef = &v
		}
		if ordinal.Valid {
			v := uint8(ordinal.Int16)
			d.PackageOrdinal = &v
		}
		d.CancelDeadline = deadline.UTC().Format(time.RFC3339)
		d.CanStillCancel = now.Before(deadline)
		d.SessionDate = date.UTC().Format("2006-01-02")
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// RemindersDue returns confirmed, not-yet-reminded bookings of active
// sessions whose combined start instant falls inside [from, to], joined
// with client contact details for dispatch.
func (r *BookingRepo) RemindersDue(ctx context.Context, from, to time.Time) ([]model.ReminderItem, error) {
	const q = `SELECT b.id, b.session_id, u.email, u.full_name, s.session_date, s.start_time, s.category
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           JOIN users u ON u.id = b.user_id
	           WHERE b.status = ? AND b.reminder_sent_at IS NULL AND s.is_active = 1
	             AND STR_TO_DATE(CONCAT(s.session_date, ' ', s.start_time), '%Y-%m-%d %H:%i')
	                 BETWEEN ? AND ?`
	rows, err := r.db.QueryContext(ctx, q, model.BookingConfirmed,
		from.UTC().Format("2006-01-02 15:04:05"), to.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ReminderItem, 0)
	for rows.Next() {
		var it model.ReminderItem
		var date time.Time
		if err := rows.Scan(&it.BookingID, &it.SessionID, &it.Email, &it.FullName, &date, &it.StartTime, &it.Category); err != nil {
			return nil, err
		}
		it.SessionDate = date.UTC().Format("2006-01-02")
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimReminder atomically marks a booking's reminder as sent and reports
// whether this caller won the claim. A booking whose marker is already set
// returns false, which makes overlapping scans and manual re-runs
// idempotent: at most one dispatch per booking regardless of how many
// ticks observe it inside the window.
func (r *BookingRepo) ClaimReminder(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET reminder_sent_at = UTC_TIMESTAMP() WHERE id = ? AND reminder_sent_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

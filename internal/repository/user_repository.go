package repository

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/utils"
)

// UserRecord mirrors the 'users' table, including the password hash the
// model type deliberately omits.
type UserRecord struct {
	ID                    uint64
	Email                 string
	PasswordHash          string
	FullName              string
	Role                  string
	ActivePackageSessions uint8
	PackageRef            *string
	PackageExpiresAt      *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Model converts the record into the public model type.
func (u *UserRecord) Model() *model.User {
	return &model.User{
		ID:                    u.ID,
		Email:                 u.Email,
		FullName:              u.FullName,
		Role:                  u.Role,
		ActivePackageSessions: u.ActivePackageSessions,
		PackageRef:            u.PackageRef,
		PackageExpiresAt:      u.PackageExpiresAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

// UserRepo persists accounts and the per-client package counters.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, password_hash, full_name, role, active_package_sessions,
                  package_ref, package_expires_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *UserRecord) error {
	var (
		ref sql.NullString
		exp sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.ActivePackageSessions, &ref, &exp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return err
	}
	if ref.Valid {
		v := ref.String
		u.PackageRef = &v
	}
	if exp.Valid {
		v := exp.Time.UTC()
		u.PackageExpiresAt = &v
	}
	return nil
}

// Create inserts a user and returns its ID. The email is normalised to
// lower case; a duplicate hits the unique index and maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, hash, fullName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalised email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u UserRecord
	err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email=? LIMIT 1`, email), &u)
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (UserRecord, error) {
	var u UserRecord
	err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id=? LIMIT 1`, id), &u)
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	return u, err
}

// ApplyPackageBookingTx records one package-mode booking against the
// client: the active-session counter goes up by one and the expiry is
// overwritten (not extended) to now + the session's package validity.
// When the client has no current package reference a fresh UUID is
// assigned. It returns the package reference and the 1..8 ordinal of this
// booking within the package. The single UPDATE keeps the counter
// mutation atomic per client.
func (r *UserRepo) ApplyPackageBookingTx(ctx context.Context, tx *sql.Tx, userID uint64, expiry time.Time) (string, uint8, error) {
	newRef := uuid.NewString()
	const q = `UPDATE users
	           SET package_ref = IF(package_ref IS NULL OR active_package_sessions = 0, ?, package_ref),
	               active_package_sessions = active_package_sessions + 1,
	               package_expires_at = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, newRef, expiry.UTC().Format("2006-01-02 15:04:05"), userID)
	if err != nil {
		return "", 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "", 0, ErrUserNotFound
	}
	var (
		ref     string
		ordinal uint8
	)
	const sel = `SELECT package_ref, active_package_sessions FROM users WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, userID).Scan(&ref, &ordinal); err != nil {
		return "", 0, err
	}
	return ref, ordinal, nil
}

// ApplyPackageCancellationTx reverses one package-mode booking, clamping
// the counter at zero. A clamp means the counter had drifted (e.g. an
// admin reset between booking and cancellation); it is logged and the
// cancellation proceeds, because clients must never be blocked from
// cancelling by counter drift.
func (r *UserRepo) ApplyPackageCancellationTx(ctx context.Context, tx *sql.Tx, userID uint64) error {
	const q = `UPDATE users SET active_package_sessions = GREATEST(CAST(active_package_sessions AS SIGNED) - 1, 0) WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	var remaining uint8
	if err := tx.QueryRowContext(ctx, `SELECT active_package_sessions FROM users WHERE id = ?`, userID).Scan(&remaining); err != nil {
		return err
	}
	if remaining == 0 {
		log.Printf("package-tracker: counter at floor after cancellation for user %d", userID)
	}
	return nil
}

// GrantPackage assigns a fresh package to the client: a new reference,
// the configured number of sessions added to the counter and the expiry
// overwritten to now + days. Returns the updated package state.
func (r *UserRepo) GrantPackage(ctx context.Context, userID uint64, sessions uint8, expiry time.Time) (model.PackageState, error) {
	ref := uuid.NewString()
	const q = `UPDATE users
	           SET package_ref = ?, active_package_sessions = active_package_sessions + ?, package_expires_at = ?
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, ref, sessions, expiry.UTC().Format("2006-01-02 15:04:05"), userID)
	if err != nil {
		return model.PackageState{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.PackageState{}, err
	}
	if n == 0 {
		return model.PackageState{}, ErrUserNotFound
	}
	return r.packageState(ctx, userID)
}

// ResetPackage clears the client's package state entirely.
func (r *UserRepo) ResetPackage(ctx context.Context, userID uint64) (model.PackageState, error) {
	const q = `UPDATE users SET package_ref = NULL, active_package_sessions = 0, package_expires_at = NULL WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, userID)
	if err != nil {
		return model.PackageState{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.PackageState{}, err
	}
	if n == 0 {
		return model.PackageState{}, ErrUserNotFound
	}
	return r.packageState(ctx, userID)
}

func (r *UserRepo) packageState(ctx context.Context, userID uint64) (model.PackageState, error) {
	var (
		st  model.PackageState
		ref sql.NullString
		exp sql.NullTime
	)
	const q = `SELECT active_package_sessions, package_ref, package_expires_at FROM users WHERE id = ?`
	if err := r.DB.QueryRowContext(ctx, q, userID).Scan(&st.ActiveSessions, &ref, &exp); err != nil {
		if err == sql.ErrNoRows {
			return st, ErrUserNotFound
		}
		return st, err
	}
	if ref.Valid {
		v := ref.String
		st.PackageRef = &v
	}
	if exp.Valid {
		v := exp.Time.UTC()
		st.ExpiresAt = &v
	}
	return st, nil
}

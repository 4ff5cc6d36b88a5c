package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens for the login surface. Only the
// SHA-256 hash of a raw token is ever stored, and every token is single
// use: presenting one consumes it and a new pair is issued.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC().Format("2006-01-02 15:04:05"))
	return err
}

// Consume revokes a live token with this hash and returns its owner. The
// revocation happens in the WHERE-guarded UPDATE itself, so two racing
// refresh requests with the same token cannot both rotate it: the loser's
// update matches zero rows and gets sql.ErrNoRows. Expired and
// already-revoked tokens fail the same way.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		tokenHash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, sql.ErrNoRows
	}
	var userID uint64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token_hash=? LIMIT 1", tokenHash).Scan(&userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// RevokeAllForUser revokes all of a user's active tokens. Logout calls
// this so every device's session ends at once.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

package repository

import (
	"context"
	"time"
)

// TokenRepo keeps refresh tokens.  Only the SHA-256 of a token is stored;
// the raw value never reaches the database.
type TokenRepo struct{ db dbtx }

const (
	insertRefreshSQL = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	// A live token is unrevoked and unexpired; anything else reads as missing.
	liveRefreshSQL = `SELECT user_id FROM refresh_tokens
		WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ? LIMIT 1`
	revokeHashSQL = `UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`
	revokeUserSQL = `UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`
)

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx, insertRefreshSQL, userID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh returns the owner of a live token, or ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.db.QueryRowContext(ctx, liveRefreshSQL, tokenHash, time.Now().UTC()).Scan(&userID)
	if err != nil {
		return 0, notFound(err)
	}
	return userID, nil
}

func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, revokeHashSQL, time.Now().UTC(), tokenHash)
	return err
}

// RevokeAllForUser ends every session of userID.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, revokeUserSQL, time.Now().UTC(), userID)
	return err
}

var _ TokenStore = (*TokenRepo)(nil)

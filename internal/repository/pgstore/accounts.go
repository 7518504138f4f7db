package pgstore

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type userRepo struct{ q querier }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	err := r.q.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role, is_active) VALUES ($1,$2,$3,$4) RETURNING id",
		u.Email, u.PasswordHash, u.Role, u.IsActive).Scan(&u.ID)
	if isUniqueViolation(err) {
		return repository.ErrEmailExists
	}
	return err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.q.QueryRow(ctx,
		"SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=$1",
		model.NormalizeEmail(email)).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.q.QueryRow(ctx,
		"SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=$1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err)
}

type tokenRepo struct{ q querier }

func (r *tokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.q.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1,$2,$3)",
		userID, tokenHash, exp.UTC())
	return err
}

func (r *tokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.q.QueryRow(ctx,
		`SELECT user_id FROM refresh_tokens
		  WHERE token_hash=$1 AND revoked_at IS NULL AND expires_at > now()`,
		tokenHash).Scan(&userID)
	return userID, notFound(err)
}

func (r *tokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.q.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at=now() WHERE token_hash=$1 AND revoked_at IS NULL", tokenHash)
	return err
}

func (r *tokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.q.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at=now() WHERE user_id=$1 AND revoked_at IS NULL", userID)
	return err
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthService issues and rotates login tokens.  The role in an access
// token is copied from the stored user, so the only way to obtain ADMIN is
// an account created with that role by CreateUser.
type AuthService struct {
	store repository.Store
	cfg   AuthConfig
	log   zerolog.Logger
}

func NewAuthService(store repository.Store, cfg AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, cfg: cfg, log: log.With().Str("component", "auth").Logger()}
}

// Register creates a CUSTOMER account and logs it in.
func (s *AuthService) Register(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	u, err := s.CreateUser(ctx, creds, model.RoleCustomer)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return s.issue(ctx, u)
}

// CreateUser stores an account with the given role.  It is the path used
// by the CLI to provision staff.
func (s *AuthService) CreateUser(ctx context.Context, creds model.Credentials, role string) (model.User, error) {
	creds.Email = model.NormalizeEmail(creds.Email)
	if err := checkStruct(creds); err != nil {
		return model.User{}, err
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != model.RoleAdmin && role != model.RoleCustomer {
		return model.User{}, invalid("role", "must be %s or %s", model.RoleAdmin, model.RoleCustomer)
	}
	hash, err := utils.HashPassword(creds.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, persistence("hash password", err)
	}
	u := model.User{Email: creds.Email, PasswordHash: hash, Role: role, IsActive: true}
	if err := s.store.Users().Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, persistence("create user", err)
	}
	s.log.Info().Uint64("user_id", u.ID).Str("role", u.Role).Msg("user created")
	return u, nil
}

// Login checks the password and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	email := model.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return model.AuthResponse{}, invalid("", "email and password are required")
	}
	u, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, persistence("get user", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, creds.Password) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (model.AuthResponse, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.AuthResponse{}, invalid("refresh_token", "is required")
	}
	hash := utils.HashRefreshRaw(raw)
	var u model.User
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		uid, err := q.Tokens().ValidateRefresh(ctx, hash)
		if err != nil {
			return err
		}
		if err := q.Tokens().RevokeByHash(ctx, hash); err != nil {
			return err
		}
		u, err = q.Users().GetByID(ctx, uid)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.AuthResponse{}, ErrInvalidRefresh
	}
	if err != nil {
		return model.AuthResponse{}, persistence("refresh", err)
	}
	if !u.IsActive {
		return model.AuthResponse{}, ErrInvalidRefresh
	}
	return s.issue(ctx, u)
}

// Logout revokes one refresh token, or every token of userID when raw is
// empty.
func (s *AuthService) Logout(ctx context.Context, userID uint64, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.store.Tokens().ValidateRefresh(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return persistence("logout", err)
		}
		return persistence("logout", s.store.Tokens().RevokeByHash(ctx, hash))
	}
	if userID == 0 {
		return invalid("", "provide Authorization header or refresh_token")
	}
	return persistence("logout", s.store.Tokens().RevokeAllForUser(ctx, userID))
}

// ParseAccess verifies an access token.
func (s *AuthService) ParseAccess(raw string) (model.Session, error) {
	return utils.ParseAccessToken(s.cfg.JWTSecret, raw)
}

func (s *AuthService) issue(ctx context.Context, u model.User) (model.AuthResponse, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return model.AuthResponse{}, persistence("issue access", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return model.AuthResponse{}, persistence("issue refresh", err)
	}
	if err := s.store.Tokens().StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return model.AuthResponse{}, persistence("save refresh", err)
	}
	return model.AuthResponse{
		User:    model.UserPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  model.TokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: model.TokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func TestRegisterIsAlwaysCustomer(t *testing.T) {
	svc, _ := fixture(t, 1)
	resp, err := svc.Auth.Register(context.Background(), model.Credentials{Email: "Ann@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	sess, err := svc.Auth.ParseAccess(resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sess.UserID)
	assert.False(t, sess.IsAdmin())

	_, err = svc.Auth.Register(context.Background(), model.Credentials{Email: "ann@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _ := fixture(t, 1)
	ctx := context.Background()
	_, err := svc.Auth.CreateUser(ctx, model.Credentials{Email: "boss@example.com", Password: "password123"}, "admin")
	require.NoError(t, err)

	resp, err := svc.Auth.Login(ctx, model.Credentials{Email: "BOSS@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	_, err = svc.Auth.Login(ctx, model.Credentials{Email: "boss@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Auth.Login(ctx, model.Credentials{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := fixture(t, 1)
	_, err := svc.Auth.CreateUser(context.Background(), model.Credentials{Email: "x@example.com", Password: "password123"}, "OWNER")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)

	_, err = svc.Auth.CreateUser(context.Background(), model.Credentials{Email: "x@example.com", Password: "short"}, model.RoleCustomer)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestRefreshRotates(t *testing.T) {
	svc, _ := fixture(t, 1)
	ctx := context.Background()
	first, err := svc.Auth.Register(ctx, model.Credentials{Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	second, err := svc.Auth.Refresh(ctx, first.Refresh.Token)
	require.NoError(t, err)
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	_, err = svc.Auth.Refresh(ctx, first.Refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	require.NoError(t, svc.Auth.Logout(ctx, 0, second.Refresh.Token))
	_, err = svc.Auth.Refresh(ctx, second.Refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

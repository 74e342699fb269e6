package service

import (
	"context"
	"testing"

	"messpos/internal/config"
	"messpos/internal/dto"
	"messpos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{JWTSecret: "test-secret-at-least-32-characters!!", JWTExpirationHours: 1, JWTRefreshHours: 2}
	svc := NewAuthService(repo, cfg)
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "anita", Name: "Anita", Password: "counter-pass", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	return svc, repo
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "anita", Password: "counter-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleCashier, resp.User.Role)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "anita", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "counter-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := newAuthFixture(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "anita", Password: "counter-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "anita", refreshed.User.Username)

	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_DeactivatedUserCannotLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	for uid := range repo.users {
		require.NoError(t, svc.DeactivateUser(context.Background(), uid))
	}

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "anita", Password: "counter-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users, err := svc.ListUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, users)
	users, err = svc.ListUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_UpdateUser(t *testing.T) {
	svc, repo := newAuthFixture(t)
	var u *model.User
	for _, x := range repo.users {
		u = x
	}

	resp, err := svc.UpdateUser(context.Background(), u.ID, dto.UpdateUserRequest{Role: model.RoleAdmin, Password: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Role)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "anita", Password: "new-password"})
	assert.NoError(t, err)
}

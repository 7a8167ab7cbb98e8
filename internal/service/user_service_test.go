package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T, db *gorm.DB) (UserService, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       []byte("test_secret"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	return NewUserService(repository.NewUserRepository(db), cfg), cfg
}

func TestSignupHashesPasswordAndSetsRole(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestUserService(t, db)

	user, err := svc.Signup(context.Background(), model.RoleDistributor, SignupRequest{
		Username: "wale",
		Email:    "wale@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleDistributor, user.Role)
	assert.True(t, user.IsActive)

	var stored model.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestSignupRejectsInvalidRoleAndDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestUserService(t, db)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "superuser", SignupRequest{
		Username: "eve", Email: "eve@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "other@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada2", Email: "ada@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginIssuesSignedTokens(t *testing.T) {
	db := newTestDB(t)
	svc, cfg := newTestUserService(t, db)
	ctx := context.Background()

	created, err := svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	parsed, err := jwt.Parse(tokens.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return cfg.JWTSecret, nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleCustomer, claims["role"])
}

func TestLoginRejectsBadCredentialsAndDisabledAccounts(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestUserService(t, db)
	ctx := context.Background()

	user, err := svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Error(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.Error(t, err)

	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret123"})
	assert.Error(t, err)
}

func TestRefreshRotatesTheToken(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestUserService(t, db)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token is spent
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.Error(t, err)
}

func TestRefreshRejectsExpiredTokens(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestUserService(t, db)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.RoleCustomer, SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.RefreshToken{}).
		Where("token = ?", tokens.RefreshToken).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.Error(t, err)
}

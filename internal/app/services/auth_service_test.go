package services

import (
	"context"
	"testing"
	"time"

	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/repositories"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/okan/urcp/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	tokens map[string]*repositories.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*repositories.RefreshToken{}}
}

func (f *fakeTokenStore) Save(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.tokens[token] = &repositories.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, token string) (*repositories.RefreshToken, error) {
	return f.tokens[token], nil
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *fakeUserStore, *fakeTokenStore) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "urcp.test",
	})
	return NewAuthService(users, tokens, jwtService), users, tokens
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, users, tokens := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "Alice",
		Email:      "alice@uni.edu",
		Password:   "Password123!",
		Role:       "student",
		Department: "Physics",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotNil(t, resp.User)
	assert.NotZero(t, resp.User.ID)

	stored, err := users.GetByEmail(context.Background(), "alice@uni.edu")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Password123!", stored.PasswordHash, "password is stored hashed")
	assert.Contains(t, tokens.tokens, resp.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	req := &dto.RegisterRequest{
		Name: "Alice", Email: "alice@uni.edu", Password: "Password123!",
		Role: "student", Department: "Physics",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginChecksPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Alice", Email: "alice@uni.edu", Password: "Password123!",
		Role: "student", Department: "Physics",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@uni.edu", Password: "Password123!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@uni.edu", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@uni.edu", Password: "Password123!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Alice", Email: "alice@uni.edu", Password: "Password123!",
		Role: "student", Department: "Physics",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.NotContains(t, tokens.tokens, registered.RefreshToken, "used refresh token is revoked")
	assert.Contains(t, tokens.tokens, refreshed.RefreshToken)

	// The old token cannot be replayed
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Alice", Email: "alice@uni.edu", Password: "Password123!",
		Role: "student", Department: "Physics",
	})
	require.NoError(t, err)

	tokens.tokens[registered.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.NotContains(t, tokens.tokens, registered.RefreshToken)
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "42", claims.Subject)
}

func TestAdminFlagRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(7, "admin@example.com", true)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefreshToken(42, "guest@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	svc := newTestService()

	access, err := svc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(42, "guest@example.com")
	require.NoError(t, err)

	// Access tokens must not validate as refresh tokens and vice versa
	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewService("different-secret", "different-refresh", time.Hour, time.Hour)

	token, err := svc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := svc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, svc.IsTokenExpired(token))
}

func TestIsTokenExpired(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)
	assert.False(t, svc.IsTokenExpired(token))

	expiredSvc := NewService("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	expired, err := expiredSvc.GenerateAccessToken(42, "guest@example.com", false)
	require.NoError(t, err)
	assert.True(t, svc.IsTokenExpired(expired))

	// garbage is invalid, not expired
	assert.False(t, svc.IsTokenExpired("not-a-token"))
}

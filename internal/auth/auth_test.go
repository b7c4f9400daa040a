package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_backend/internal/models"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", TokenTTLs{
		Access:  15 * time.Minute,
		Refresh: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", TokenTTLs{})
	assert.Error(t, err)
}

func TestToken_RoundTrip(t *testing.T) {
	m := newManager(t)

	token, expiresAt, err := m.Generate("user-1", "jane@example.com", TokenRefresh)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := m.Parse(token, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, TokenRefresh, claims.TokenType)
}

func TestToken_WrongType(t *testing.T) {
	m := newManager(t)

	token, err := m.GenerateAccessToken("user-1", "jane@example.com")
	require.NoError(t, err)

	_, err = m.Parse(token, TokenRefresh)
	assert.ErrorIs(t, err, ErrTokenWrongType)
}

func TestToken_Expired(t *testing.T) {
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.GenerateAccessToken("user-1", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token, TokenAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_WrongSecret(t *testing.T) {
	m := newManager(t)
	token, err := m.GenerateAccessToken("user-1", "")
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", TokenTTLs{Access: time.Minute})
	require.NoError(t, err)

	_, err = other.Parse(token, TokenAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("Secret123", hash))
	assert.False(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("Secret123", ""))

	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long enough"))
}

func TestCheckAccountStatus(t *testing.T) {
	assert.NoError(t, CheckAccountStatus(models.AccountActive))
	assert.NoError(t, CheckAccountStatus(models.AccountInactive))
	assert.ErrorIs(t, CheckAccountStatus(models.AccountSuspended), ErrAccountSuspended)
	assert.ErrorIs(t, CheckAccountStatus(models.AccountDeleted), ErrAccountDeleted)
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	require.NoError(t, err)
	b, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashOpaqueToken(a), HashOpaqueToken(a))
	assert.NotEqual(t, a, HashOpaqueToken(a))
}

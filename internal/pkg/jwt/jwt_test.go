package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "moderator", false)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "moderator", claims.Role)
	assert.False(t, claims.IsBanned)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-secret", -time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "user", false)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestForeignSecretRejected(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)
	other := NewService("other-secret", time.Minute, time.Hour)

	token, err := other.GenerateAccessToken(uuid.New(), "user", false)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenIsOpaqueAndHashable(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
}

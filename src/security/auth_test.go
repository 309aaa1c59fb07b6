package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordHashing(t *testing.T) {
	auth := NewAuthService(testSecret, time.Hour)

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, auth.CompareHashAndPassword(hash, "s3cret-pass"))
	assert.Error(t, auth.CompareHashAndPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuthService(testSecret, time.Hour)

	token, expiresAt, err := auth.GenerateToken("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestValidateToken_Rejects(t *testing.T) {
	auth := NewAuthService(testSecret, time.Hour)

	other := NewAuthService("another-secret-another-secret-xx", time.Hour)
	foreign, _, err := other.GenerateToken("user-123")
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.Error(t, err)

	expired := NewAuthService(testSecret, -time.Minute)
	stale, _, err := expired.GenerateToken("user-123")
	require.NoError(t, err)
	_, err = auth.ValidateToken(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

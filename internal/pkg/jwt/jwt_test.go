package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "168h")

	token, expiresAt, err := svc.GenerateRefreshToken("user-1", "member", "Asia/Jakarta")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	userID, role, tz, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "member", role)
	assert.Equal(t, "Asia/Jakarta", tz)
}

func TestParseRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "168h")

	token, _, err := svc.GenerateAccessToken("user-1", "member", "Asia/Jakarta")
	require.NoError(t, err)

	_, _, _, err = svc.ParseRefreshToken(token)
	assert.Error(t, err)
}

func TestParseRefreshTokenRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "168h")

	_, _, _, err := svc.ParseRefreshToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenCookieScope(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "168h")

	cookie := svc.RefreshTokenCookie("tok", 1700000000)
	assert.Equal(t, "refresh_token", cookie.Name)
	assert.Equal(t, "/api/v1/sessions", cookie.Path)
	assert.True(t, cookie.HttpOnly)
}

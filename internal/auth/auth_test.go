package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-hash", "password123"))
}

func TestGenerateAndValidateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(1, "jo@example.com", "user", "pro", testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "pro", claims.Plan)
	assert.Equal(t, "access", claims.TokenType)

	refreshClaims, err := ValidateToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	access, err := GenerateAccessToken(1, "jo@example.com", "user", "free", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(access, "other-secret")
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := generateToken(1, "jo@example.com", "user", "free", "access", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	require.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "jo@example.com", "user", "free", "")
	require.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	require.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	refresh, err := GenerateRefreshToken(4, "ada@example.com", "user", "free", testSecret)
	require.NoError(t, err)

	access, claims, err := RefreshAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 4, claims.UserID)

	newClaims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", newClaims.TokenType)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	access, err := GenerateAccessToken(4, "ada@example.com", "user", "free", testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(access, testSecret)
	require.ErrorIs(t, err, ErrInvalidTokenType)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "noatrans-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := testManager()

	token, jti, err := mgr.GenerateAccessToken(42, "ama@example.com", "Learner", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "Learner", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
}

func TestRefreshTokenType(t *testing.T) {
	mgr := testManager()

	token, _, err := mgr.GenerateRefreshToken(42, "ama@example.com", "Learner", 0)
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	mgr := testManager()
	other := NewJWTManager(JWTConfig{
		Secret: "different-secret",
		Expiry: time.Hour,
		Issuer: "noatrans-test",
	})

	token, _, err := mgr.GenerateAccessToken(1, "x@example.com", "Admin", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	mgr := NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: -time.Minute,
		Issuer: "noatrans-test",
	})

	token, _, err := mgr.GenerateAccessToken(1, "x@example.com", "Admin", 0)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong password"), ErrPasswordMismatch)
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestIsPasswordValid(t *testing.T) {
	assert.False(t, IsPasswordValid("short"))
	assert.True(t, IsPasswordValid("long enough password"))
}

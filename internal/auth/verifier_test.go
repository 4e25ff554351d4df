package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenReturnsSubject(t *testing.T) {
	verifier := NewVerifier("test-secret")
	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	verifier := NewVerifier("test-secret")
	token := signToken(t, "other-secret", jwt.MapClaims{"sub": "user-42"})

	_, err := verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	verifier := NewVerifier("test-secret")
	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	verifier := NewVerifier("test-secret")
	token := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	verifier := NewVerifier("test-secret")
	_, err := verifier.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

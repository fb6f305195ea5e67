package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercell/internal/platform/middleware"
	dErrors "cybercell/pkg/domain-errors"
)

const testKey = "test-signing-key"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(ttl time.Duration) Claims {
	return Claims{
		UserID: "7f9c24e5-1f2a-4f7e-9b3d-2a40c86a9e10",
		Role:   middleware.RolePolice,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	v := NewValidator(testKey)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testKey), validClaims(time.Hour))

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7f9c24e5-1f2a-4f7e-9b3d-2a40c86a9e10", claims.UserID)
	assert.Equal(t, middleware.RolePolice, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	v := NewValidator(testKey)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testKey), validClaims(-time.Minute))

	_, err := v.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateTokenWrongKey(t *testing.T) {
	v := NewValidator(testKey)
	token := signToken(t, jwt.SigningMethodHS256, []byte("other-key"), validClaims(time.Hour))

	_, err := v.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenRejectsNonHMAC(t *testing.T) {
	v := NewValidator(testKey)
	// alg=none tokens must never verify.
	token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(time.Hour))

	_, err := v.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenGarbage(t *testing.T) {
	v := NewValidator(testKey)

	_, err := v.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

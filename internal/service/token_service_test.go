package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "payrolled")

	token, expiry, err := svc.Generate("operator")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("secret-a", time.Hour, "payrolled")
	verifier := NewJWTTokenService("secret-b", time.Hour, "payrolled")

	token, _, err := issuer.Generate("operator")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_WrongIssuer(t *testing.T) {
	issuer := NewJWTTokenService("test-secret-key", time.Hour, "someone-else")
	verifier := NewJWTTokenService("test-secret-key", time.Hour, "payrolled")

	token, _, err := issuer.Generate("operator")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "payrolled")

	token, _, err := svc.Generate("operator")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "payrolled")

	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}

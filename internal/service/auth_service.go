package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService for the single payroll
// operator account. Credentials come from configuration, not the database:
// there is exactly one operator and no self-service registration.
type AuthServiceImpl struct {
	username     string
	passwordHash string
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(username, passwordHash string, hashSvc ports.HashService, tokenSvc ports.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		username:     username,
		passwordHash: passwordHash,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
	}
}

// Login validates operator credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if s.username == "" || s.passwordHash == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Verify runs even on a username mismatch to keep timing uniform.
	valid, err := s.hashSvc.Verify(password, s.passwordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !usernameOK || !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(s.username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}

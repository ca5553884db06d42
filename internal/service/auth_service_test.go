package service

import (
	"context"
	"testing"
	"time"

	"payrolled/internal/core/ports/mocks"
	"payrolled/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService("operator", "$argon2id$...", hashSvc, tokenSvc)

	expiry := time.Now().Add(time.Hour)
	hashSvc.EXPECT().Verify("hunter2", "$argon2id$...").Return(true, nil)
	tokenSvc.EXPECT().Generate("operator").Return("jwt-token", expiry, nil)

	token, exp, err := svc.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService("operator", "$argon2id$...", hashSvc, tokenSvc)

	hashSvc.EXPECT().Verify("wrong", "$argon2id$...").Return(false, nil)

	_, _, err := svc.Login(context.Background(), "operator", "wrong")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService("operator", "$argon2id$...", hashSvc, tokenSvc)

	// Password verification still runs for timing uniformity.
	hashSvc.EXPECT().Verify("hunter2", "$argon2id$...").Return(true, nil)

	_, _, err := svc.Login(context.Background(), "intruder", "hunter2")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_Unconfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService("", "", hashSvc, tokenSvc)

	_, _, err := svc.Login(context.Background(), "operator", "hunter2")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

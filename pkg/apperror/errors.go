package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Roster (EMP) ----

func ErrEmployeeNotFound() *AppError {
	return New("EMP_001", "Employee not found", http.StatusNotFound)
}

func ErrInvalidWalletAddress() *AppError {
	return New("EMP_002", "Invalid wallet address", http.StatusBadRequest)
}

func ErrInvalidSalary() *AppError {
	return New("EMP_003", "Salary must be a non-negative amount", http.StatusBadRequest)
}

// ---- Payroll runs (RUN) ----

func ErrRunNotFound() *AppError {
	return New("RUN_001", "Payroll run not found", http.StatusNotFound)
}

func ErrRunNotConfirmable() *AppError {
	return New("RUN_002", "Payroll run is not awaiting confirmation", http.StatusConflict)
}

func ErrRunInProgress() *AppError {
	return New("RUN_003", "Another payroll run is already in progress", http.StatusConflict)
}

func ErrEmptyRoster() *AppError {
	return New("RUN_004", "No active employees to pay", http.StatusBadRequest)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_002", "Internal database error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

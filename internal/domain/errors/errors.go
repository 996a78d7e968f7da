package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid or already used")
)

// Machine-readable error codes returned to clients
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternalError      = "INTERNAL_ERROR"
)

// AppError represents an application error with an HTTP status, a stable
// code, and an Expose flag deciding whether Message is safe to show the
// caller. Non-exposable errors surface as a generic message.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Expose  bool   `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new exposable app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Expose:  true,
		Err:     err,
	}
}

// Common error constructors

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

// InvalidCredentials covers bad passwords and unknown accounts with one
// indistinguishable message to prevent account enumeration.
func InvalidCredentials() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password", ErrInvalidCredentials)
}

// InvalidOrExpiredToken covers invalid, expired and already-rotated refresh
// tokens without leaking which state caused the failure.
func InvalidOrExpiredToken() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", ErrTokenInvalid)
}

// InvalidOrExpiredVerification covers expired, consumed and mismatched
// verification tokens. These flows carry no credentials, so the failure is
// a validation error rather than an authentication one.
func InvalidOrExpiredVerification() *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, "Invalid or expired token", ErrTokenInvalid)
}

func Locked(message string) *AppError {
	return NewAppError(http.StatusLocked, CodeAccountLocked, message, ErrAccountLocked)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

// InternalError wraps an unexpected failure. Never exposed: the underlying
// cause (missing secret, store outage) is a deploy-time or infrastructure
// defect, not something the caller should see.
func InternalError(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
		Expose:  false,
		Err:     err,
	}
}

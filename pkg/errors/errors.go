package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource already exists")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrBannedAccount      = errors.New("account is banned")
	ErrValidation         = errors.New("validation error")
	ErrTooManyAttempts    = errors.New("too many attempts")
)

// Custom error type with context
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthenticated(msg string) *AppError {
	return &AppError{Code: "UNAUTHENTICATED", Message: msg, Err: ErrUnauthenticated}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Err: ErrBadRequest}
}

func Validation(msg string) *AppError {
	return &AppError{Code: "VALIDATION", Message: msg, Err: ErrValidation}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: fmt.Errorf("%w: %w", ErrInternalServer, err)}
}

// InvalidCredentials is returned for every login failure cause.
func InvalidCredentials() *AppError {
	return &AppError{Code: "INVALID_CREDENTIALS", Message: "invalid credentials", Err: ErrInvalidCredentials}
}

// DuplicateEmail and DuplicateUsername also match ErrConflict.
func DuplicateEmail() *AppError {
	return &AppError{Code: "DUPLICATE_EMAIL", Message: "email already in use", Err: fmt.Errorf("%w: %w", ErrConflict, ErrDuplicateEmail)}
}

func DuplicateUsername() *AppError {
	return &AppError{Code: "DUPLICATE_USERNAME", Message: "username already in use", Err: fmt.Errorf("%w: %w", ErrConflict, ErrDuplicateUsername)}
}

func BannedAccount() *AppError {
	return &AppError{Code: "BANNED", Message: "your account has been banned", Err: ErrBannedAccount}
}

func TooManyAttempts() *AppError {
	return &AppError{Code: "TOO_MANY_ATTEMPTS", Message: "too many failed login attempts, try again later", Err: ErrTooManyAttempts}
}

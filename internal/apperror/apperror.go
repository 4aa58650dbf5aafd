package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrGenerationTimeout  = errors.New("generation timed out")
)

type AppError struct {
	Err     error  // sentinel from the list above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Unauthenticated covers a missing, expired, or tampered token, and tokens
// that reference an account which no longer exists. HTTP handlers map this
// to 401 Unauthorized.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// InvalidCredentials deliberately does not say whether the username or the
// password was wrong — distinguishing them would let an attacker enumerate
// usernames.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid username or password",
	}
}

// GenerationFailed means the AI generator declined to produce output
// (its structured {"error": reason} response) or returned something that
// does not parse as a valid question/card array.
func GenerationFailed(reason string) *AppError {
	return &AppError{
		Err:     ErrGenerationFailed,
		Message: fmt.Sprintf("generation failed: %s", reason),
	}
}

func GenerationTimeout() *AppError {
	return &AppError{
		Err:     ErrGenerationTimeout,
		Message: "generation timed out",
	}
}

package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("quiz", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("username", "ana1"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "GenerationFailed wraps ErrGenerationFailed",
			err:       GenerationFailed("insufficient content"),
			target:    ErrGenerationFailed,
			wantMatch: true,
		},
		{
			name:      "GenerationTimeout wraps ErrGenerationTimeout",
			err:       GenerationTimeout(),
			target:    ErrGenerationTimeout,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("quiz", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "GenerationFailed does NOT match ErrGenerationTimeout",
			err:       GenerationFailed("bad output"),
			target:    ErrGenerationTimeout,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("quiz", "abc123"),
			wantMessage: "quiz not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Conflict message includes resource and key",
			err:         Conflict("username", "ana1"),
			wantMessage: "username already exists: ana1",
		},
		{
			name:        "GenerationFailed carries the reason",
			err:         GenerationFailed("insufficient content"),
			wantMessage: "generation failed: insufficient content",
		},
		{
			name:        "InvalidCredentials does not name the failing field",
			err:         InvalidCredentials(),
			wantMessage: "invalid username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("quiz", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("score", "score must be between 0 and 100")
	if err.Field != "score" {
		t.Errorf("Field = %q, want %q", err.Field, "score")
	}
}

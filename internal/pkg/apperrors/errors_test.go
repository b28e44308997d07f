package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorUnwrap(t *testing.T) {
	err := NewConflictError("print request 7 changed")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "print request 7 changed", err.Error())
}

func TestIsMatchesAnyListedError(t *testing.T) {
	err := fmt.Errorf("saving: %w", ErrFileTooLarge)

	assert.True(t, Is(err, ErrNoFile, ErrInvalidFileType, ErrFileTooLarge))
	assert.False(t, Is(err, ErrNoFile, ErrInvalidFileType))
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"wrapped print type", fmt.Errorf("quote: %w", ErrInvalidPrintType), true},
		{"custom validation", NewValidationError(nil, "copies must be at least 1"), true},
		{"custom validation keeps cause", NewValidationError(ErrInvalidStatus, "bad status"), true},
		{"permission", ErrPermissionDenied, false},
		{"not found", ErrPrintRequestNotFound, false},
		{"duplicate email", ErrEmailAlreadyExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidation(tt.err))
		})
	}
}

func TestCustomErrorWithDetails(t *testing.T) {
	err := NewCustomError(ErrFileTooLarge, "too big").WithDetails(map[string]interface{}{"maxBytes": 10})

	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Equal(t, 10, err.Details["maxBytes"])
}

func TestCustomErrorFallbackMessage(t *testing.T) {
	assert.Equal(t, "conflict", (&CustomError{Err: ErrConflict}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}

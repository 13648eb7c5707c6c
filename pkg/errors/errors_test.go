package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryKindAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantKind   Kind
		wantStatus int
	}{
		{"not found", NewNotFoundError("concept"), KindNotFound, http.StatusNotFound},
		{"already exists", NewAlreadyExistsError("dup"), KindAlreadyExists, http.StatusConflict},
		{"validation", NewValidationError(CodeSelfReference, "self"), KindValidation, http.StatusBadRequest},
		{"invalid operation", NewInvalidOperationError("no-op"), KindInvalidOperation, http.StatusUnprocessableEntity},
		{"permission denied", NewPermissionDeniedError("modify", "concept", "not creator"), KindPermissionDenied, http.StatusForbidden},
		{"invalid confidence", NewInvalidConfidenceError("3/2", "exceeds 1"), KindInvalidConfidence, http.StatusBadRequest},
		{"system", NewSystemError("boom", nil), KindSystem, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.True(t, IsKind(tt.err, tt.wantKind))
		})
	}
}

func TestPermissionDeniedDetails(t *testing.T) {
	err := NewPermissionDeniedError("modify", "concept", "caller is not the creator")
	assert.Equal(t, "modify", err.Details["operation"])
	assert.Equal(t, "concept", err.Details["resource"])
	assert.Equal(t, "caller is not the creator", err.Details["reason"])
}

func TestHasCodeThroughWrapping(t *testing.T) {
	base := NewValidationError(CodeIrreflexiveViolation, "self edge")
	wrapped := fmt.Errorf("assert relationship: %w", base)

	assert.True(t, HasCode(wrapped, CodeIrreflexiveViolation))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, HasCode(wrapped, CodeDeprecatedType))
}

func TestWrapPreservesKind(t *testing.T) {
	base := NewNotFoundError("relationship")
	wrapped := Wrap(base, "update")

	require.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "update")

	assert.Nil(t, Wrap(nil, "noop"))

	plain := errors.New("disk full")
	system := Wrap(plain, "save snapshot")
	assert.True(t, IsKind(system, KindSystem))
	assert.ErrorIs(t, system, plain)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewSystemError("wrapper", cause)
	assert.ErrorIs(t, err, cause)
}

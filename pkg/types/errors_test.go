package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"validation", NewValidationError("bad %s", "input"), IsValidationError},
		{"not found", NewNotFoundError("missing"), IsNotFoundError},
		{"conflict", NewConflictError("dupe"), IsConflictError},
		{"persistence", NewPersistenceError("write failed", errors.New("disk")), IsPersistenceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.True(t, tt.is(fmt.Errorf("outer: %w", tt.err)))
			assert.False(t, tt.is(errors.New("plain")))
			assert.False(t, tt.is(nil))
		})
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("replace failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "replace failed")
	assert.Contains(t, err.Error(), "disk full")
}

func TestAPIErrorMessage(t *testing.T) {
	withStatus := NewAPIError(CodeNotFound, 404, "table %s not found", "tbl_x")
	assert.Equal(t, "table tbl_x not found (status 404)", withStatus.Error())

	noStatus := NewAPIError(CodeNetwork, 0, "connection refused")
	assert.Equal(t, "connection refused", noStatus.Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
		wantOk bool
	}{
		{"nil", nil, "", false},
		{"plain", errors.New("boom"), "", false},
		{"validation", NewValidationError("bad"), CodeValidation, true},
		{"not found", NewNotFoundError("missing"), CodeNotFound, true},
		{"conflict", NewConflictError("dupe"), CodeConflict, true},
		{"api error", NewAPIError(CodeAuth, 401, "denied"), CodeAuth, true},
		{"wrapped api error", fmt.Errorf("call: %w", NewAPIError(CodeNetwork, 503, "down")), CodeNetwork, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ErrorCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestIsConflictClass(t *testing.T) {
	assert.True(t, IsConflictClass(NewConflictError("dupe")))
	assert.True(t, IsConflictClass(NewAPIError(CodeConflict, 409, "unique violation")))
	assert.True(t, IsConflictClass(fmt.Errorf("create: %w", NewConflictError("dupe"))))
	assert.False(t, IsConflictClass(NewAPIError(CodeValidation, 422, "bad field")))
	assert.False(t, IsConflictClass(NewNotFoundError("missing")))
	assert.False(t, IsConflictClass(nil))
}

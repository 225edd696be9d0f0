package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewNotFoundError("graph")
	assert.Equal(t, "NOT_FOUND: graph not found", err.Error())

	withCause := NewInternalError("encode failed").WithCause(fmt.Errorf("boom"))
	assert.Equal(t, "INTERNAL: encode failed: boom", withCause.Error())
}

func TestWrap_PreservesType(t *testing.T) {
	inner := NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	wrapped := Wrap(inner, "loading for analysis")

	assert.True(t, IsNotFound(wrapped))
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "GRAPH_NOT_FOUND", appErr.Code)
	assert.Equal(t, "loading for analysis: graph not found", appErr.Message)
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk full"), "persisting graph")
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.ErrorContains(t, wrapped, "disk full")
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
	}{
		{NewValidationError("bad"), IsValidation},
		{NewNotFoundError("x"), IsNotFound},
		{NewConflictError("busy"), IsConflict},
		{NewDataIntegrityError("corrupt"), IsDataIntegrity},
		{NewUnavailableError("down"), IsUnavailable},
	}
	for _, tt := range tests {
		assert.True(t, tt.pred(tt.err))
		assert.False(t, tt.pred(fmt.Errorf("plain")))
		// Predicates see through fmt wrapping.
		assert.True(t, tt.pred(fmt.Errorf("context: %w", tt.err)))
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root")
	err := NewInternalError("wrapper").WithCause(cause)
	assert.ErrorIs(t, err, cause)
}

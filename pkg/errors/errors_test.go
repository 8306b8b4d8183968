package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesPredefined(t *testing.T) {
	err := Clone(ErrModuleFull, "PRJ101 is full")

	assert.True(t, errors.Is(err, ErrModuleFull))
	assert.False(t, errors.Is(err, ErrModuleClosed))
	assert.Equal(t, "PRJ101 is full", err.Error())
	assert.Equal(t, "module has no available slots", ErrModuleFull.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load module")

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to load module: connection reset", err.Error())
}

func TestFromErrorNormalises(t *testing.T) {
	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)

	typed := FromError(fmt.Errorf("outer: %w", ErrAlreadyRegistered))
	assert.Equal(t, ErrAlreadyRegistered.Code, typed.Code)

	assert.Nil(t, FromError(nil))
}

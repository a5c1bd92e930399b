package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load plan: %w", Clone(ErrNotFound, "study plan not found"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "study plan not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "subjects: duplicate subject")
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "subjects: duplicate subject", clone.Message)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to save plan")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to save plan: db down", err.Error())
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingError(t *testing.T) {
	cause := stderrors.New("disk full")
	err := StoreUnavailable(cause)

	assert.Equal(t, "[STORE_UNAVAILABLE] booking store unavailable: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.IsRetryable())

	wrapped := fmt.Errorf("create booking: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeStoreUnavailable))
	assert.ErrorIs(t, wrapped, New(ErrCodeStoreUnavailable, ""))
	assert.Equal(t, ErrCodeStoreUnavailable, CodeOf(wrapped, ErrCodeParseFailed))
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed([]string{"venue", "time"})

	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Equal(t, []string{"venue", "time"}, err.Context["missing"])
	assert.False(t, err.IsRetryable())
	assert.False(t, IsCode(err, ErrCodeBookingConflict))
}

func TestCodeOf_Default(t *testing.T) {
	assert.Equal(t, ErrCodeParseFailed, CodeOf(stderrors.New("plain"), ErrCodeParseFailed))
	assert.Equal(t, ErrCodeParseFailed, CodeOf(nil, ErrCodeParseFailed))
}

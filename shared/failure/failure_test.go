package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/shared/failure"
)

func TestKindConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *failure.Failure
		code     int
	}{
		{"invalid interval", failure.InvalidInterval("start must be before end"), failure.ErrInvalidInterval, http.StatusBadRequest},
		{"invalid range", failure.InvalidRange(""), failure.ErrInvalidRange, http.StatusBadRequest},
		{"not found", failure.NotFound("window not found"), failure.ErrNotFound, http.StatusNotFound},
		{"owner mismatch", failure.OwnerMismatch("not your window"), failure.ErrOwnerMismatch, http.StatusForbidden},
		{"not authorized", failure.NotAuthorized(""), failure.ErrNotAuthorized, http.StatusForbidden},
		{"no availability", failure.NoAvailability(""), failure.ErrNoAvailability, http.StatusUnprocessableEntity},
		{"slot taken", failure.SlotTaken(""), failure.ErrSlotTaken, http.StatusConflict},
		{"illegal transition", failure.IllegalTransition(""), failure.ErrIllegalTransition, http.StatusConflict},
		{"busy", failure.Busy(""), failure.ErrBusy, http.StatusServiceUnavailable},
		{"property not found", failure.PropertyNotFound(""), failure.ErrPropertyNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)

			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, failure.GetCode(wrapped))
			assert.Equal(t, tt.sentinel.Kind, failure.GetKind(wrapped))
		})
	}
}

func TestKindConstructors_DefaultMessage(t *testing.T) {
	assert.EqualError(t, failure.SlotTaken(""), "slot taken")
	assert.EqualError(t, failure.SlotTaken("10:00 is booked"), "10:00 is booked")
}

func TestIs_ComparesKindOnly(t *testing.T) {
	assert.NotErrorIs(t, failure.SlotTaken("taken"), failure.ErrBusy)
	assert.NotErrorIs(t, failure.BadRequestFromString("plain"), failure.ErrInvalidInterval)
	assert.NotErrorIs(t, failure.Unauthorized("no token"), failure.ForbiddenError)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, failure.IsRetryable(fmt.Errorf("wrap: %w", failure.Busy("lock wait exceeded"))))
	assert.False(t, failure.IsRetryable(failure.SlotTaken("")))
	assert.False(t, failure.IsRetryable(errors.New("plain")))
}

func TestPlainConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"bad request", failure.BadRequest(errors.New("validation failed")), http.StatusBadRequest, "validation failed"},
		{"bad request from string", failure.BadRequestFromString("custom"), http.StatusBadRequest, "custom"},
		{"unauthorized", failure.Unauthorized("token expired"), http.StatusUnauthorized, "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fail *failure.Failure

			require.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.code, fail.Code)
			assert.Equal(t, tt.message, fail.Message)
			assert.Equal(t, failure.KindUnknown, fail.Kind)
		})
	}

	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode_NonFailures(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("regular error")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	assert.Equal(t, failure.KindUnknown, failure.GetKind(errors.New("regular error")))
}

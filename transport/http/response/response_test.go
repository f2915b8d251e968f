package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/shared/constant"
	"visit/shared/failure"
	"visit/transport/http/response"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       int
		kind       string
		retryAfter string
	}{
		{"invalid interval", failure.InvalidInterval("start must be before end"), http.StatusBadRequest, "invalid_interval", ""},
		{"invalid range", failure.InvalidRange(""), http.StatusBadRequest, "invalid_range", ""},
		{"owner mismatch", failure.OwnerMismatch(""), http.StatusForbidden, "owner_mismatch", ""},
		{"not authorized", failure.NotAuthorized(""), http.StatusForbidden, "not_authorized", ""},
		{"not found", failure.NotFound("booking not found"), http.StatusNotFound, "not_found", ""},
		{"property not found", failure.PropertyNotFound(""), http.StatusNotFound, "property_not_found", ""},
		{"slot taken", failure.SlotTaken(""), http.StatusConflict, "slot_taken", ""},
		{"illegal transition", failure.IllegalTransition(""), http.StatusConflict, "illegal_transition", ""},
		{"no availability", failure.NoAvailability(""), http.StatusUnprocessableEntity, "no_availability", ""},
		{"busy", failure.Busy(""), http.StatusServiceUnavailable, "busy", "1"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			response.WithError(recorder, tt.err)

			assert.Equal(t, tt.code, recorder.Code)
			assert.Equal(t, tt.retryAfter, recorder.Header().Get(constant.ResponseHeaderRetryAfter))
			assert.Equal(t, constant.ContentTypeJSON, recorder.Header().Get(constant.RequestHeaderContentType))

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"id":"b1"}}`, recorder.Body.String())
}

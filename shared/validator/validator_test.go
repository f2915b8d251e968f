package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/shared/failure"
	"visit/shared/validator"
)

type recurrence struct {
	Weekdays []int  `json:"weekdays" validate:"omitempty,max=7,dive,min=0,max=6"`
	Until    string `json:"until"    validate:"omitempty,rfc3339"`
}

type windowRequest struct {
	PropertyID  string      `json:"property_id" validate:"required"`
	Start       string      `json:"start"       validate:"required,rfc3339"`
	End         string      `json:"end"         validate:"required,rfc3339"`
	Granularity int         `json:"granularity" validate:"omitempty,minslot"`
	Status      string      `json:"status"      validate:"omitempty,oneof=confirmed rejected"`
	Recurrence  *recurrence `json:"recurrence"  validate:"omitempty"`
}

func validRequest() windowRequest {
	return windowRequest{
		PropertyID: "P1",
		Start:      "2024-06-01T09:00:00Z",
		End:        "2024-06-01T12:00:00Z",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *windowRequest)
		message string
	}{
		{name: "valid", mutate: func(*windowRequest) {}},
		{
			name:    "missing property",
			mutate:  func(r *windowRequest) { r.PropertyID = "" },
			message: "property_id is required",
		},
		{
			name:    "start without offset",
			mutate:  func(r *windowRequest) { r.Start = "2024-06-01 09:00" },
			message: "start must be an RFC3339 timestamp",
		},
		{
			name:    "granularity below minimum",
			mutate:  func(r *windowRequest) { r.Granularity = 5 },
			message: "granularity is shorter than the minimum bookable slot",
		},
		{
			name:    "unknown status",
			mutate:  func(r *windowRequest) { r.Status = "pending" },
			message: "status must be one of confirmed rejected",
		},
		{
			name:    "weekday out of range",
			mutate:  func(r *windowRequest) { r.Recurrence = &recurrence{Weekdays: []int{1, 3, 9}} },
			message: "recurrence.weekdays[2] must be at most 6",
		},
		{
			name:    "until not a timestamp",
			mutate:  func(r *windowRequest) { r.Recurrence = &recurrence{Until: "soon"} },
			message: "recurrence.until must be an RFC3339 timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name: "valid body",
			body: `{"property_id":"P1","start":"2024-06-01T09:00:00Z","end":"2024-06-01T12:00:00Z"}`,
		},
		{
			name:        "missing end",
			body:        `{"property_id":"P1","start":"2024-06-01T09:00:00Z"}`,
			expectError: true,
		},
		{
			name:        "malformed JSON",
			body:        `{"property_id":}`,
			expectError: true,
		},
		{
			name:        "empty object",
			body:        `{}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req windowRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)
			if tt.expectError {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "P1", req.PropertyID)
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       any
		tag         string
		expectError bool
	}{
		{name: "granularity above minimum", field: 60, tag: "minslot"},
		{name: "granularity at minimum", field: 15, tag: "minslot"},
		{name: "granularity below minimum", field: 5, tag: "minslot", expectError: true},
		{name: "granularity of wrong kind", field: "60", tag: "minslot", expectError: true},
		{name: "rfc3339 with offset", field: "2024-06-01T09:00:00+07:00", tag: "rfc3339"},
		{name: "rfc3339 utc", field: "2024-06-01T09:00:00Z", tag: "rfc3339"},
		{name: "date only", field: "2024-06-01", tag: "rfc3339", expectError: true},
		{name: "status in set", field: "confirmed", tag: "oneof=confirmed rejected"},
		{name: "status outside set", field: "done", tag: "oneof=confirmed rejected", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

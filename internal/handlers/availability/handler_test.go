package availability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visit/config"
	"visit/infras/otel/mocks"
	"visit/internal/domains/availability/model/dto"
	availabilityRepo "visit/internal/domains/availability/repository"
	"visit/internal/domains/availability/service"
	bookingModel "visit/internal/domains/booking/model"
	bookingRepo "visit/internal/domains/booking/repository"
	propertyMocks "visit/internal/domains/property/mocks"
	"visit/internal/handlers/availability"
	"visit/shared/constant"
	"visit/shared/lock"
	"visit/shared/timezone"
)

const (
	propertyID = "P1"
	ownerID    = "owner-1"
	bookingID  = "0b9f6a52-3c1d-4e8f-9a7b-2d4c6e8f0a1b"
	missingID  = "7d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
)

func day(hour int) time.Time {
	return time.Date(2024, 6, 1, hour, 0, 0, 0, time.UTC)
}

func newServer(t *testing.T) (*chi.Mux, bookingRepo.Booking) {
	t.Helper()

	ctrl := gomock.NewController(t)

	directory := propertyMocks.NewMockDirectory(ctrl)
	directory.EXPECT().PropertyExists(gomock.Any(), propertyID).Return(true, nil).AnyTimes()
	directory.EXPECT().PropertyExists(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
	directory.EXPECT().IsOwnerOf(gomock.Any(), ownerID, propertyID).Return(true, nil).AnyTimes()
	directory.EXPECT().IsOwnerOf(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	otl := mocks.NewOtel()
	clock := timezone.NewManualClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	bookings := bookingRepo.NewMemory()

	svc := service.New(availabilityRepo.NewMemory(), bookings, directory, lock.NewLocal(otl), clock, &config.Config{}, otl)
	handler := availability.New(svc, otl)

	mux := chi.NewRouter()
	mux.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), constant.ContextKeyUserID, r.Header.Get("X-Test-User"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	mux.Route("/v1", handler.Router)

	return mux, bookings
}

func call(t *testing.T, mux http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("X-Test-User", user)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	return envelope.Data
}

func TestAvailabilityRoutes(t *testing.T) {
	mux, bookings := newServer(t)

	publish := dto.PublishWindowRequest{PropertyID: propertyID, Start: "2024-06-01T09:00:00Z", End: "2024-06-01T12:00:00Z"}

	res := call(t, mux, http.MethodPost, "/v1/availabilities", ownerID, publish)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	published := decode[dto.WriteWindowResponse](t, res)
	require.NotNil(t, published.Window)
	assert.Equal(t, ownerID, published.Window.OwnerID)
	assert.NotNil(t, published.UncoveredBookings)
	assert.Empty(t, published.UncoveredBookings)

	windowPath := "/v1/availabilities/" + published.Window.ID

	booking := bookingModel.Booking{ID: bookingID, PropertyID: propertyID, OwnerID: ownerID, StartAt: day(10), EndAt: day(11), Status: bookingModel.StatusConfirmed}
	require.NoError(t, bookings.Insert(context.Background(), booking, bookingModel.HistoryEntry{ID: missingID, BookingID: bookingID, Status: bookingModel.StatusPending}))

	shrink := dto.UpdateWindowRequest{Start: "2024-06-01T09:00:00Z", End: "2024-06-01T10:00:00Z"}

	res = call(t, mux, http.MethodPut, windowPath, "hirer-a", shrink)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = call(t, mux, http.MethodPut, windowPath, ownerID, shrink)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	updated := decode[dto.WriteWindowResponse](t, res)
	assert.Equal(t, "2024-06-01T10:00:00Z", updated.Window.End)
	assert.Equal(t, []string{bookingID}, updated.UncoveredBookings)

	res = call(t, mux, http.MethodGet, "/v1/properties/P1/availabilities", "hirer-a", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decode[dto.WindowsResponse](t, res).Windows, 1)

	res = call(t, mux, http.MethodGet, "/v1/worker/availabilities", ownerID, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decode[dto.WindowsResponse](t, res).Windows, 1)

	res = call(t, mux, http.MethodDelete, windowPath, ownerID, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	removed := decode[dto.WriteWindowResponse](t, res)
	assert.Nil(t, removed.Window)
	assert.Empty(t, removed.UncoveredBookings)

	res = call(t, mux, http.MethodGet, "/v1/properties/P1/availabilities", "hirer-a", nil)
	assert.Empty(t, decode[dto.WindowsResponse](t, res).Windows)

	stored, err := bookings.Get(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusConfirmed, stored.Status)
}

func TestAvailabilityRoutes_Errors(t *testing.T) {
	mux, _ := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		code   int
	}{
		{"missing fields", http.MethodPost, "/v1/availabilities", ownerID, map[string]string{"property_id": propertyID}, http.StatusBadRequest},
		{"bad timestamp", http.MethodPost, "/v1/availabilities", ownerID, dto.PublishWindowRequest{PropertyID: propertyID, Start: "morning", End: "2024-06-01T12:00:00Z"}, http.StatusBadRequest},
		{"reversed window", http.MethodPost, "/v1/availabilities", ownerID, dto.PublishWindowRequest{PropertyID: propertyID, Start: "2024-06-01T12:00:00Z", End: "2024-06-01T09:00:00Z"}, http.StatusBadRequest},
		{"bad weekday", http.MethodPost, "/v1/availabilities", ownerID, dto.PublishWindowRequest{PropertyID: propertyID, Start: "2024-06-01T09:00:00Z", End: "2024-06-01T12:00:00Z", Recurrence: &dto.RecurrenceRequest{Weekdays: []int{7}}}, http.StatusBadRequest},
		{"not the owner", http.MethodPost, "/v1/availabilities", "hirer-a", dto.PublishWindowRequest{PropertyID: propertyID, Start: "2024-06-01T09:00:00Z", End: "2024-06-01T12:00:00Z"}, http.StatusForbidden},
		{"unknown property", http.MethodPost, "/v1/availabilities", ownerID, dto.PublishWindowRequest{PropertyID: "P9", Start: "2024-06-01T09:00:00Z", End: "2024-06-01T12:00:00Z"}, http.StatusNotFound},
		{"unknown window", http.MethodDelete, "/v1/availabilities/" + missingID, ownerID, nil, http.StatusNotFound},
		{"malformed id on update", http.MethodPut, "/v1/availabilities/not-a-uuid", ownerID, dto.UpdateWindowRequest{Start: "2024-06-01T09:00:00Z", End: "2024-06-01T12:00:00Z"}, http.StatusNotFound},
		{"malformed id on remove", http.MethodDelete, "/v1/availabilities/not-a-uuid", ownerID, nil, http.StatusNotFound},
		{"anonymous listing", http.MethodGet, "/v1/worker/availabilities", "", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, mux, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.code, res.Code, res.Body.String())
		})
	}
}

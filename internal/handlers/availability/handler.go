package availability

import (
	"net/http"

	"visit/infras/otel"
	"visit/internal/domains/availability/model/dto"
	"visit/internal/domains/availability/service"
	"visit/shared"
	"visit/shared/constant"
	"visit/shared/failure"
	"visit/shared/validator"
	"visit/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/availabilities", handler.PublishWindow)
	router.Put("/availabilities/{id}", handler.UpdateWindow)
	router.Delete("/availabilities/{id}", handler.RemoveWindow)
	router.Get("/worker/availabilities", handler.GetMyWindows)
	router.Get("/properties/{propertyId}/availabilities", handler.GetPropertyWindows)
}

// PublishWindow publishes an availability window for a property.
// @Summary Publish availability
// @Description Publish a one-off or weekly recurring availability window. Touching windows with the same recurrence are merged.
// @Tags Availability
// @Accept json
// @Produce json
// @Param request body dto.PublishWindowRequest true "Publish Window Request"
// @Success 201 {object} response.Data[dto.WriteWindowResponse] "Published window"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/availabilities [post]
// @Security BearerAuth
func (handler *Handler) PublishWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PublishWindow")
	defer scope.End()

	req := dto.PublishWindowRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	ownerID := shared.UserID(ctx)

	window, err := handler.service.Publish(ctx, ownerID, req.PropertyID, draft)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to publish availability window")

		response.WithError(w, err)

		return
	}

	res := dto.WriteWindowResponse{Window: &dto.WindowResponse{}, UncoveredBookings: []string{}}
	res.Window.FromModel(window)

	scope.AddEvent("Availability published by user " + ownerID)

	response.WithJSON(w, http.StatusCreated, res)
}

// UpdateWindow replaces the interval and recurrence of a window.
// @Summary Update availability
// @Description Replace a window. Bookings that are no longer covered are reported and kept.
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Window ID"
// @Param request body dto.UpdateWindowRequest true "Update Window Request"
// @Success 200 {object} response.Data[dto.WriteWindowResponse] "Updated window"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/availabilities/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateWindow")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := shared.RequireUUID(id, "availability window"); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("invalid window ID")

		response.WithError(w, err)

		return
	}

	req := dto.UpdateWindowRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	window, uncovered, err := handler.service.Update(ctx, shared.UserID(ctx), id, draft)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update availability window")

		response.WithError(w, err)

		return
	}

	res := dto.WriteWindowResponse{Window: &dto.WindowResponse{}, UncoveredBookings: uncovered}
	res.Window.FromModel(window)

	scope.AddEvent("Availability updated")

	response.WithJSON(w, http.StatusOK, res)
}

// RemoveWindow deletes a window.
// @Summary Remove availability
// @Description Delete a window. Existing bookings are never cancelled; the ones left uncovered are reported.
// @Tags Availability
// @Produce json
// @Param id path string true "Window ID"
// @Success 200 {object} response.Data[dto.WriteWindowResponse] "Removed"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/availabilities/{id} [delete]
// @Security BearerAuth
func (handler *Handler) RemoveWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveWindow")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := shared.RequireUUID(id, "availability window"); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("invalid window ID")

		response.WithError(w, err)

		return
	}

	uncovered, err := handler.service.Remove(ctx, shared.UserID(ctx), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove availability window")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability removed")

	response.WithJSON(w, http.StatusOK, dto.WriteWindowResponse{UncoveredBookings: uncovered})
}

// GetMyWindows lists the windows published by the caller.
// @Summary Get my availability
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Data[dto.WindowsResponse] "Windows"
// @Failure 401 {object} response.Error
// @Router /v1/worker/availabilities [get]
// @Security BearerAuth
func (handler *Handler) GetMyWindows(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyWindows")
	defer scope.End()

	ownerID := shared.UserID(ctx)
	if ownerID == constant.Empty {
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	windows, err := handler.service.ListByOwner(ctx, ownerID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list owner windows")

		response.WithError(w, err)

		return
	}

	res := dto.WindowsResponse{}
	res.FromModels(windows)

	response.WithJSON(w, http.StatusOK, res)
}

// GetPropertyWindows lists the windows of a property ordered by start.
// @Summary Get property availability
// @Tags Availability
// @Produce json
// @Param propertyId path string true "Property ID"
// @Success 200 {object} response.Data[dto.WindowsResponse] "Windows"
// @Failure 500 {object} response.Error
// @Router /v1/properties/{propertyId}/availabilities [get]
// @Security BearerAuth
func (handler *Handler) GetPropertyWindows(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPropertyWindows")
	defer scope.End()

	propertyID := chi.URLParam(r, constant.RequestParamPropertyID)

	windows, err := handler.service.ListByProperty(ctx, propertyID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list property windows")

		response.WithError(w, err)

		return
	}

	res := dto.WindowsResponse{}
	res.FromModels(windows)

	response.WithJSON(w, http.StatusOK, res)
}

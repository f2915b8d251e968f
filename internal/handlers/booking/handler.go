package booking

import (
	"net/http"

	"visit/infras/otel"
	"visit/internal/domains/booking/model"
	"visit/internal/domains/booking/model/dto"
	"visit/internal/domains/booking/service"
	"visit/shared"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
	"visit/shared/validator"
	"visit/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Ledger
	otel    otel.Otel
}

func New(service service.Ledger, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/book-visit", handler.BookVisit)
	router.Get("/hirer/bookings", handler.GetHirerBookings)
	router.Get("/worker/bookings", handler.GetWorkerBookings)

	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}/status", handler.UpdateBookingStatus)
		routerGroup.Delete("/{id}", handler.CancelBooking)
	})
}

// BookVisit reserves a visit slot.
// @Summary Book a visit
// @Description Reserve an interval inside a published window. The booking starts pending.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.BookVisitRequest true "Book Visit Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Pending booking"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/book-visit [post]
// @Security BearerAuth
func (handler *Handler) BookVisit(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".BookVisit")
	defer scope.End()

	req := dto.BookVisitRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	requesterID := shared.UserID(ctx)

	cmd, err := req.ToCommand(requesterID)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Execute(ctx, cmd)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to book visit")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Visit booked by user " + requesterID)

	res := dto.BookingResponse{}
	res.FromModel(booking)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetHirerBookings lists the caller's bookings as a requester.
// @Summary Get my visits
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (pending, confirmed, rejected, cancelled, completed)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "Bookings"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/hirer/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetHirerBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHirerBookings")
	defer scope.End()

	userID := shared.UserID(ctx)
	if userID == constant.Empty {
		log.Error().Msg("failed to get user ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	status := model.Status(r.URL.Query().Get(constant.RequestParamStatus))

	bookings, err := handler.service.ListByRequester(ctx, userID, status, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get hirer bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetWorkerBookings lists bookings on the caller's properties.
// @Summary Get bookings on my properties
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (pending, confirmed, rejected, cancelled, completed)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "Bookings"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/worker/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetWorkerBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWorkerBookings")
	defer scope.End()

	userID := shared.UserID(ctx)
	if userID == constant.Empty {
		log.Error().Msg("failed to get user ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	status := model.Status(r.URL.Query().Get(constant.RequestParamStatus))

	bookings, err := handler.service.ListByOwner(ctx, userID, status, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get worker bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID returns a booking with its status history.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := shared.RequireUUID(id, "booking"); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("invalid booking ID")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Get(ctx, shared.UserID(ctx), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// UpdateBookingStatus moves a booking to a new status.
// @Summary Update booking status
// @Description Confirm, reject or complete a booking as its owner. Cancellation follows the cutoff policy.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateStatusRequest true "Update Status Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Updated booking"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/status [put]
// @Security BearerAuth
func (handler *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBookingStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := shared.RequireUUID(id, "booking"); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("invalid booking ID")

		response.WithError(w, err)

		return
	}

	req := dto.UpdateStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Execute(ctx, req.ToCommand(id, shared.UserID(ctx)))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking moved to " + req.Status)

	res := dto.BookingResponse{}
	res.FromModel(booking)

	response.WithJSON(w, http.StatusOK, res)
}

// CancelBooking cancels a booking as its requester or owner.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Cancelled booking"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := shared.RequireUUID(id, "booking"); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("invalid booking ID")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Execute(ctx, model.Cancel{BookingID: id, ActorID: shared.UserID(ctx)})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	res := dto.BookingResponse{}
	res.FromModel(booking)

	response.WithJSON(w, http.StatusOK, res)
}

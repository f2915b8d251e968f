package slot

import (
	"net/http"
	"strconv"

	"visit/infras/otel"
	"visit/internal/domains/slot/model/dto"
	"visit/internal/domains/slot/service"
	"visit/shared/constant"
	"visit/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Slot
	otel    otel.Otel
}

func New(service service.Slot, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/properties/{propertyId}/available-slots", handler.GetAvailableSlots)
}

// GetAvailableSlots previews the free slots of a property.
// @Summary Get available slots
// @Description Free slots of the given granularity inside [from, to), excluding pending and confirmed bookings and slots that already started.
// @Tags Slot
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Param granularity_minutes query int false "Slot length in minutes (default 60)"
// @Success 200 {object} response.Data[dto.SlotsResponse] "Free slots"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/properties/{propertyId}/available-slots [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSlots")
	defer scope.End()

	propertyID := chi.URLParam(r, constant.RequestParamPropertyID)
	values := r.URL.Query()

	granularity := values.Get(constant.RequestParamGranMin)
	if granularity == constant.Empty {
		granularity = strconv.Itoa(constant.DefaultSlotMinutes)
	}

	query := dto.SlotsQuery{}
	if err := query.FromValues(values.Get(constant.RequestParamFrom), values.Get(constant.RequestParamTo), granularity); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate slots query")

		response.WithError(w, err)

		return
	}

	rng, err := query.Range()
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	slots, err := handler.service.ComputeFreeSlots(ctx, propertyID, query.Granularity(), rng)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to compute free slots")

		response.WithError(w, err)

		return
	}

	res := dto.SlotsResponse{}
	res.FromSeq(propertyID, slots)

	response.WithJSON(w, http.StatusOK, res)
}

package dto

import (
	"time"

	"visit/internal/domains/booking/model"
	"visit/shared"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/timezone"
)

type BookVisitRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	Start      string `json:"start"       validate:"required,rfc3339"`
	End        string `json:"end"         validate:"required,rfc3339"`
}

func (r *BookVisitRequest) ToCommand(requesterID string) (model.Reserve, error) {
	start, err := time.Parse(constant.DateFormat, r.Start)
	if err != nil {
		return model.Reserve{}, failure.InvalidInterval("start must be an RFC3339 timestamp")
	}

	end, err := time.Parse(constant.DateFormat, r.End)
	if err != nil {
		return model.Reserve{}, failure.InvalidInterval("end must be an RFC3339 timestamp")
	}

	return model.Reserve{
		PropertyID:  r.PropertyID,
		RequesterID: requesterID,
		Interval:    interval.Interval{Start: start, End: end},
	}, nil
}

// UpdateStatusRequest carries the owner's decision on a booking. Cancellation has its own route.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected completed cancelled"`
}

// ToCommand maps the requested status to the command that produces it.
func (r *UpdateStatusRequest) ToCommand(bookingID, actorID string) model.Command {
	switch model.Status(r.Status) {
	case model.StatusConfirmed:
		return model.Confirm{BookingID: bookingID, ActorID: actorID}
	case model.StatusRejected:
		return model.Reject{BookingID: bookingID, ActorID: actorID}
	case model.StatusCompleted:
		return model.Complete{BookingID: bookingID, ActorID: actorID}
	default:
		return model.Cancel{BookingID: bookingID, ActorID: actorID}
	}
}

type HistoryResponse struct {
	Status    string `json:"status"`
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	At        string `json:"at"`
}

type BookingResponse struct {
	ID          string            `json:"id"`
	PropertyID  string            `json:"property_id"`
	OwnerID     string            `json:"owner_id"`
	RequesterID string            `json:"requester_id"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Status      string            `json:"status"`
	History     []HistoryResponse `json:"history,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.PropertyID = m.PropertyID
	r.OwnerID = m.OwnerID
	r.RequesterID = m.RequesterID
	r.Start = timezone.Format(m.StartAt, constant.DateFormat)
	r.End = timezone.Format(m.EndAt, constant.DateFormat)
	r.Status = string(m.Status)
	r.Metadata.FromModel(m.Metadata)
}

func (r *BookingResponse) WithHistory(entries []model.HistoryEntry) {
	r.History = make([]HistoryResponse, len(entries))
	for i, entry := range entries {
		r.History[i] = HistoryResponse{
			Status:    string(entry.Status),
			ActorID:   entry.ActorID,
			ActorRole: entry.ActorRole,
			At:        timezone.Format(entry.At, constant.DateFormat),
		}
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

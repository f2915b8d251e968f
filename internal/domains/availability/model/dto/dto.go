package dto

import (
	"time"

	"visit/internal/domains/availability/model"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/timezone"
)

type RecurrenceRequest struct {
	Weekdays []int `json:"weekdays" validate:"omitempty,max=7,dive,min=0,max=6"`
	Until    string `json:"until"    validate:"omitempty,rfc3339"`
}

func (r *RecurrenceRequest) ToModel() (*model.Recurrence, error) {
	if r == nil {
		return nil, nil
	}

	rec := &model.Recurrence{Weekdays: make([]time.Weekday, len(r.Weekdays))}
	for i, day := range r.Weekdays {
		rec.Weekdays[i] = time.Weekday(day)
	}

	if r.Until != constant.Empty {
		until, err := time.Parse(constant.DateFormat, r.Until)
		if err != nil {
			return nil, failure.InvalidInterval("recurrence until must be an RFC3339 timestamp")
		}

		rec.Until = &until
	}

	return rec, nil
}

type PublishWindowRequest struct {
	PropertyID string             `json:"property_id" validate:"required"`
	Start      string             `json:"start"       validate:"required,rfc3339"`
	End        string             `json:"end"         validate:"required,rfc3339"`
	Recurrence *RecurrenceRequest `json:"recurrence"  validate:"omitempty"`
}

// ToDraft parses the request into an unsaved window spec.
func (r *PublishWindowRequest) ToDraft() (Draft, error) {
	return parseDraft(r.Start, r.End, r.Recurrence)
}

type UpdateWindowRequest struct {
	Start      string             `json:"start"      validate:"required,rfc3339"`
	End        string             `json:"end"        validate:"required,rfc3339"`
	Recurrence *RecurrenceRequest `json:"recurrence" validate:"omitempty"`
}

func (r *UpdateWindowRequest) ToDraft() (Draft, error) {
	return parseDraft(r.Start, r.End, r.Recurrence)
}

// Draft is the owner-supplied shape of a window before normalization.
type Draft struct {
	Interval   interval.Interval
	Recurrence *model.Recurrence
}

func parseDraft(start, end string, recurrence *RecurrenceRequest) (Draft, error) {
	startAt, err := time.Parse(constant.DateFormat, start)
	if err != nil {
		return Draft{}, failure.InvalidInterval("start must be an RFC3339 timestamp")
	}

	endAt, err := time.Parse(constant.DateFormat, end)
	if err != nil {
		return Draft{}, failure.InvalidInterval("end must be an RFC3339 timestamp")
	}

	in, err := interval.New(startAt, endAt)
	if err != nil {
		return Draft{}, err
	}

	rec, err := recurrence.ToModel()
	if err != nil {
		return Draft{}, err
	}

	return Draft{Interval: in, Recurrence: rec}, nil
}

type RecurrenceResponse struct {
	Weekdays []int  `json:"weekdays"`
	Until    string `json:"until,omitempty"`
}

type WindowResponse struct {
	ID         string              `json:"id"`
	PropertyID string              `json:"property_id"`
	OwnerID    string              `json:"owner_id"`
	Start      string              `json:"start"`
	End        string              `json:"end"`
	Recurrence *RecurrenceResponse `json:"recurrence,omitempty"`
	gDto.Metadata
}

func (r *WindowResponse) FromModel(m model.Window) {
	r.ID = m.ID
	r.PropertyID = m.PropertyID
	r.OwnerID = m.OwnerID
	r.Start = timezone.Format(m.StartAt, constant.DateFormat)
	r.End = timezone.Format(m.EndAt, constant.DateFormat)
	r.Recurrence = nil

	if m.Recurrence != nil {
		rec := &RecurrenceResponse{Weekdays: make([]int, len(m.Recurrence.Weekdays))}
		for i, day := range m.Recurrence.Weekdays {
			rec.Weekdays[i] = int(day)
		}

		if m.Recurrence.Until != nil {
			rec.Until = timezone.Format(*m.Recurrence.Until, constant.DateFormat)
		}

		r.Recurrence = rec
	}

	r.Metadata.FromModel(m.Metadata)
}

type WindowsResponse struct {
	Windows []WindowResponse `json:"windows"`
}

func (r *WindowsResponse) FromModels(models []model.Window) {
	r.Windows = make([]WindowResponse, len(models))
	for i, mod := range models {
		r.Windows[i].FromModel(mod)
	}
}

// WriteWindowResponse is returned by every window mutation. UncoveredBookings lists active
// bookings that no longer sit inside any published window; they are kept as they are.
type WriteWindowResponse struct {
	Window            *WindowResponse `json:"window,omitempty"`
	UncoveredBookings []string        `json:"uncovered_bookings"`
}

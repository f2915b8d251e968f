package dto

import (
	"iter"
	"strconv"
	"time"

	"visit/shared/constant"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/timezone"
	"visit/shared/validator"
)

// SlotsQuery is read from the query string of the available slots route.
type SlotsQuery struct {
	From               string `json:"from"                validate:"required,rfc3339"`
	To                 string `json:"to"                  validate:"required,rfc3339"`
	GranularityMinutes int    `json:"granularity_minutes" validate:"required,minslot,max=1440"`
}

// FromValues fills the query from raw strings and validates it.
func (q *SlotsQuery) FromValues(from, to, granularity string) error {
	q.From = from
	q.To = to

	if granularity != constant.Empty {
		minutes, err := strconv.Atoi(granularity)
		if err != nil {
			return failure.InvalidRange("granularity_minutes must be an integer")
		}

		q.GranularityMinutes = minutes
	}

	return validator.ValidateStruct(q)
}

func (q *SlotsQuery) Range() (interval.Interval, error) {
	start, err := time.Parse(constant.DateFormat, q.From)
	if err != nil {
		return interval.Interval{}, failure.InvalidRange("from must be an RFC3339 timestamp")
	}

	end, err := time.Parse(constant.DateFormat, q.To)
	if err != nil {
		return interval.Interval{}, failure.InvalidRange("to must be an RFC3339 timestamp")
	}

	return interval.Interval{Start: start, End: end}, nil
}

func (q *SlotsQuery) Granularity() time.Duration {
	return time.Duration(q.GranularityMinutes) * time.Minute
}

type SlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type SlotsResponse struct {
	PropertyID string         `json:"property_id"`
	Slots      []SlotResponse `json:"slots"`
}

func (r *SlotsResponse) FromSeq(propertyID string, slots iter.Seq[interval.Interval]) {
	r.PropertyID = propertyID
	r.Slots = []SlotResponse{}

	for slot := range slots {
		r.Slots = append(r.Slots, SlotResponse{
			Start: timezone.Format(slot.Start, constant.DateFormat),
			End:   timezone.Format(slot.End, constant.DateFormat),
		})
	}
}

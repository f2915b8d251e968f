// Package events publishes booking lifecycle events for notifiers. Publishing is best effort:
// a failed publish is logged and never undoes the change that produced the event.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"visit/internal/domains/booking/model"
)

type Type string

const (
	BookingRequested Type = "BookingRequested"
	BookingConfirmed Type = "BookingConfirmed"
	BookingRejected  Type = "BookingRejected"
	BookingCancelled Type = "BookingCancelled"
	BookingCompleted Type = "BookingCompleted"
)

var byStatus = map[model.Status]Type{
	model.StatusPending:   BookingRequested,
	model.StatusConfirmed: BookingConfirmed,
	model.StatusRejected:  BookingRejected,
	model.StatusCancelled: BookingCancelled,
	model.StatusCompleted: BookingCompleted,
}

type BookingEvent struct {
	Type        Type         `json:"type"`
	BookingID   string       `json:"booking_id"`
	PropertyID  string       `json:"property_id"`
	OwnerID     string       `json:"owner_id"`
	RequesterID string       `json:"requester_id"`
	Status      model.Status `json:"status"`
	ActorID     string       `json:"actor_id"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// FromBooking builds the event announcing that b reached its current status.
func FromBooking(b model.Booking, actorID string, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        byStatus[b.Status],
		BookingID:   b.ID,
		PropertyID:  b.PropertyID,
		OwnerID:     b.OwnerID,
		RequesterID: b.RequesterID,
		Status:      b.Status,
		ActorID:     actorID,
		Start:       b.StartAt,
		End:         b.EndAt,
		OccurredAt:  at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

package model

import (
	"time"

	"visit/shared/interval"
	"visit/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldPropertyID  = "property_id"
	FieldOwnerID     = "owner_id"
	FieldRequesterID = "requester_id"
	FieldStartAt     = "start_at"
	FieldEndAt       = "end_at"
	FieldStatus      = "status"

	HistoryTableName  = "booking_status_history"
	HistoryEntityName = "booking_status_history"

	FieldHistoryID        = "id"
	FieldHistoryBookingID = "booking_id"
	FieldHistoryAt        = "at"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses hold their interval: no other booking of the property may overlap them.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

func (s Status) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

// Booking is one requester's claim on an interval of a property.
// OwnerID is copied from the property when the booking is created and is not kept in sync.
type Booking struct {
	ID          string    `db:"id"`
	PropertyID  string    `db:"property_id"`
	OwnerID     string    `db:"owner_id"`
	RequesterID string    `db:"requester_id"`
	StartAt     time.Time `db:"start_at"`
	EndAt       time.Time `db:"end_at"`
	Status      Status    `db:"status"`
	model.Metadata
}

func (b Booking) Interval() interval.Interval {
	return interval.Interval{Start: b.StartAt, End: b.EndAt}
}

// HistoryEntry records one status change and who made it.
type HistoryEntry struct {
	ID        string    `db:"id"`
	BookingID string    `db:"booking_id"`
	Status    Status    `db:"status"`
	ActorID   string    `db:"actor_id"`
	ActorRole string    `db:"actor_role"`
	At        time.Time `db:"at"`
}

// Intervals returns the intervals of bookings.
func Intervals(bookings []Booking) []interval.Interval {
	out := make([]interval.Interval, len(bookings))
	for i, b := range bookings {
		out[i] = b.Interval()
	}

	return out
}

package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"visit/internal/domains/booking/model"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
)

type memoryImpl struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
	history  map[string][]model.HistoryEntry
}

// NewMemory returns a Booking kept in process memory. Like the postgres exclusion constraint,
// Insert refuses a booking that overlaps an active booking of the same property.
func NewMemory() Booking {
	return &memoryImpl{
		bookings: map[string]model.Booking{},
		history:  map[string][]model.HistoryEntry{},
	}
}

func (m *memoryImpl) Insert(_ context.Context, booking model.Booking, entry model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if booking.Status.IsActive() {
		for _, other := range m.bookings {
			if other.PropertyID == booking.PropertyID && other.Status.IsActive() && other.Interval().Overlaps(booking.Interval()) {
				return failure.SlotTaken("the requested interval overlaps an active booking") //nolint:wrapcheck
			}
		}
	}

	m.bookings[booking.ID] = booking
	m.history[booking.ID] = append(m.history[booking.ID], entry)

	return nil
}

func (m *memoryImpl) Get(_ context.Context, id string) (model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.bookings[id], nil
}

func (m *memoryImpl) History(_ context.Context, id string) ([]model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.history[id]), nil
}

func (m *memoryImpl) ListActive(_ context.Context, propertyID string, from time.Time) ([]model.Booking, error) {
	return m.filter(func(b model.Booking) bool {
		return b.PropertyID == propertyID && b.Status.IsActive() && b.EndAt.After(from)
	}, byStart), nil
}

func (m *memoryImpl) List(_ context.Context, query ListQuery) ([]model.Booking, int, error) {
	all := m.filter(func(b model.Booking) bool {
		return (query.RequesterID == constant.Empty || b.RequesterID == query.RequesterID) &&
			(query.OwnerID == constant.Empty || b.OwnerID == query.OwnerID) &&
			(query.Status == constant.Empty || b.Status == query.Status)
	}, byStart)

	if query.Params.SortDir == gDto.SortDirDesc {
		slices.Reverse(all)
	}

	total := len(all)

	if query.Params.Limit > 0 {
		offset := 0
		if query.Params.Page > 0 {
			offset = (query.Params.Page - 1) * query.Params.Limit
		}

		offset = min(offset, total)
		all = all[offset:min(offset+query.Params.Limit, total)]
	}

	return all, total, nil
}

func (m *memoryImpl) Transition(_ context.Context, id string, from, to model.Status, entry model.HistoryEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}

	b.Status = to
	b.ModifiedAt = entry.At
	b.ModifiedBy = entry.ActorID

	m.bookings[id] = b
	m.history[id] = append(m.history[id], entry)

	return true, nil
}

func (m *memoryImpl) ListElapsed(_ context.Context, now time.Time, limit int) ([]model.Booking, error) {
	out := m.filter(func(b model.Booking) bool {
		return b.Status == model.StatusConfirmed && !b.EndAt.After(now)
	}, func(a, b model.Booking) int { return a.EndAt.Compare(b.EndAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (m *memoryImpl) filter(keep func(model.Booking) bool, order func(a, b model.Booking) int) []model.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Booking{}

	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}

	slices.SortFunc(out, order)

	return out
}

func byStart(a, b model.Booking) int {
	return cmp.Or(a.StartAt.Compare(b.StartAt), cmp.Compare(a.ID, b.ID))
}

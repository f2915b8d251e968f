package repository

import (
	"context"
	"slices"
	"sync"

	"visit/internal/domains/availability/model"
)

type memoryImpl struct {
	mu      sync.RWMutex
	windows map[string]model.Window
}

// NewMemory returns an Availability kept in process memory. Replace is applied under one write
// lock so readers see either the old or the new window set.
func NewMemory() Availability {
	return &memoryImpl{windows: map[string]model.Window{}}
}

func (m *memoryImpl) Get(_ context.Context, id string) (model.Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return clone(m.windows[id]), nil
}

func (m *memoryImpl) ListByProperty(_ context.Context, propertyID string) ([]model.Window, error) {
	return m.filter(func(w model.Window) bool { return w.PropertyID == propertyID }), nil
}

func (m *memoryImpl) ListByOwner(_ context.Context, ownerID string) ([]model.Window, error) {
	return m.filter(func(w model.Window) bool { return w.OwnerID == ownerID }), nil
}

func (m *memoryImpl) Replace(_ context.Context, remove []string, upsert []model.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range remove {
		delete(m.windows, id)
	}

	for _, w := range upsert {
		m.windows[w.ID] = clone(w)
	}

	return nil
}

func (m *memoryImpl) filter(keep func(model.Window) bool) []model.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Window{}

	for _, w := range m.windows {
		if keep(w) {
			out = append(out, clone(w))
		}
	}

	slices.SortFunc(out, model.Compare)

	return out
}

func clone(w model.Window) model.Window {
	if w.Recurrence != nil {
		rec := *w.Recurrence
		rec.Weekdays = slices.Clone(rec.Weekdays)
		w.Recurrence = &rec
	}

	return w
}

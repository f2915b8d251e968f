package service_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visit/config"
	"visit/infras/otel/mocks"
	availabilityModel "visit/internal/domains/availability/model"
	availabilityRepo "visit/internal/domains/availability/repository"
	bookingModel "visit/internal/domains/booking/model"
	bookingRepo "visit/internal/domains/booking/repository"
	propertyMocks "visit/internal/domains/property/mocks"
	"visit/internal/domains/slot/service"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/timezone"
)

const property = "p1"

type fixture struct {
	svc      service.Slot
	windows  availabilityRepo.Availability
	bookings bookingRepo.Booking
	clock    *timezone.ManualClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	directory := propertyMocks.NewMockDirectory(ctrl)
	directory.EXPECT().PropertyExists(gomock.Any(), property).Return(true, nil).AnyTimes()
	directory.EXPECT().PropertyExists(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	windows := availabilityRepo.NewMemory()
	bookings := bookingRepo.NewMemory()
	clock := timezone.NewManualClock(at(1, 0, 0))

	return fixture{
		svc:      service.New(windows, bookings, directory, clock, &config.Config{}, mocks.NewOtel()),
		windows:  windows,
		bookings: bookings,
		clock:    clock,
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func (f fixture) window(t *testing.T, id string, start, end time.Time, rec *availabilityModel.Recurrence) {
	t.Helper()

	w := availabilityModel.Window{ID: id, PropertyID: property, OwnerID: "owner", StartAt: start, EndAt: end, Recurrence: rec}
	require.NoError(t, f.windows.Replace(context.Background(), nil, []availabilityModel.Window{w}))
}

func (f fixture) book(t *testing.T, id string, start, end time.Time, status bookingModel.Status) {
	t.Helper()

	b := bookingModel.Booking{ID: id, PropertyID: property, StartAt: start, EndAt: end, Status: status}
	require.NoError(t, f.bookings.Insert(context.Background(), b, bookingModel.HistoryEntry{ID: id, BookingID: id, Status: status}))
}

func (f fixture) slots(t *testing.T, granularity time.Duration, from, to time.Time) []interval.Interval {
	t.Helper()

	seq, err := f.svc.ComputeFreeSlots(context.Background(), property, granularity, interval.Interval{Start: from, End: to})
	require.NoError(t, err)

	return slices.Collect(seq)
}

func hours(day int, starts ...int) []interval.Interval {
	out := []interval.Interval{}
	for _, h := range starts {
		out = append(out, interval.Interval{Start: at(day, h, 0), End: at(day, h+1, 0)})
	}

	return out
}

func TestComputeFreeSlots_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		property    string
		granularity time.Duration
		rng         interval.Interval
		want        error
	}{
		{name: "start after end", property: property, granularity: time.Hour, rng: interval.Interval{Start: at(2, 0, 0), End: at(1, 0, 0)}, want: failure.ErrInvalidRange},
		{name: "empty range", property: property, granularity: time.Hour, rng: interval.Interval{Start: at(2, 0, 0), End: at(2, 0, 0)}, want: failure.ErrInvalidRange},
		{name: "range beyond limit", property: property, granularity: time.Hour, rng: interval.Interval{Start: at(1, 0, 0), End: at(1, 0, 0).AddDate(400, 0, 0)}, want: failure.ErrInvalidRange},
		{name: "zero granularity", property: property, granularity: 0, rng: interval.Interval{Start: at(1, 0, 0), End: at(2, 0, 0)}, want: failure.ErrInvalidRange},
		{name: "unknown property", property: "missing", granularity: time.Hour, rng: interval.Interval{Start: at(1, 0, 0), End: at(2, 0, 0)}, want: failure.ErrPropertyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ComputeFreeSlots(ctx, tt.property, tt.granularity, tt.rng)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestComputeFreeSlots_NoWindows(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.slots(t, time.Hour, at(1, 0, 0), at(30, 0, 0)))
}

func TestComputeFreeSlots_SubtractsActiveBookings(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 12, 0), nil)

	assert.Equal(t, hours(3, 9, 10, 11), f.slots(t, time.Hour, at(1, 0, 0), at(30, 0, 0)))

	f.book(t, "pending", at(3, 10, 0), at(3, 11, 0), bookingModel.StatusPending)
	assert.Equal(t, hours(3, 9, 11), f.slots(t, time.Hour, at(1, 0, 0), at(30, 0, 0)))

	f.book(t, "cancelled", at(3, 9, 0), at(3, 10, 0), bookingModel.StatusCancelled)
	assert.Equal(t, hours(3, 9, 11), f.slots(t, time.Hour, at(1, 0, 0), at(30, 0, 0)))
}

func TestComputeFreeSlots_DropsResiduals(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 11, 30), nil)
	f.book(t, "b1", at(3, 9, 30), at(3, 9, 45), bookingModel.StatusConfirmed)

	got := f.slots(t, 30*time.Minute, at(1, 0, 0), at(30, 0, 0))

	assert.Equal(t, []interval.Interval{
		{Start: at(3, 9, 0), End: at(3, 9, 30)},
		{Start: at(3, 9, 45), End: at(3, 10, 15)},
		{Start: at(3, 10, 15), End: at(3, 10, 45)},
		{Start: at(3, 10, 45), End: at(3, 11, 15)},
	}, got)
}

func TestComputeFreeSlots_ClipsToRange(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 17, 0), nil)

	assert.Equal(t, hours(3, 10, 11), f.slots(t, time.Hour, at(3, 10, 0), at(3, 12, 30)))
}

func TestComputeFreeSlots_SkipsStartedSlots(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 12, 0), nil)
	f.clock.Set(at(3, 10, 30))

	assert.Equal(t, hours(3, 11), f.slots(t, time.Hour, at(3, 0, 0), at(4, 0, 0)))
}

func TestComputeFreeSlots_RecurringWindows(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 11, 0), &availabilityModel.Recurrence{Weekdays: []time.Weekday{time.Monday}})

	got := f.slots(t, time.Hour, at(1, 0, 0), at(11, 0, 0))

	assert.Equal(t, append(hours(3, 9, 10), hours(10, 9, 10)...), got)
}

func TestComputeFreeSlots_Restartable(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 9, 0), at(3, 12, 0), nil)

	seq, err := f.svc.ComputeFreeSlots(context.Background(), property, time.Hour, interval.Interval{Start: at(1, 0, 0), End: at(30, 0, 0)})
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	for slot := range seq {
		assert.Equal(t, at(3, 9, 0), slot.Start)

		break
	}
}

func TestComputeFreeSlots_NeverOverlapActiveBookings(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(3, 8, 0), at(3, 20, 0), nil)
	f.book(t, "b1", at(3, 9, 10), at(3, 10, 5), bookingModel.StatusPending)
	f.book(t, "b2", at(3, 13, 0), at(3, 14, 0), bookingModel.StatusConfirmed)
	f.book(t, "b3", at(3, 17, 59), at(3, 18, 1), bookingModel.StatusConfirmed)

	active, err := f.bookings.ListActive(context.Background(), property, at(1, 0, 0))
	require.NoError(t, err)

	for _, granularity := range []time.Duration{15 * time.Minute, 30 * time.Minute, time.Hour} {
		for _, slot := range f.slots(t, granularity, at(1, 0, 0), at(30, 0, 0)) {
			assert.False(t, interval.AnyOverlaps(bookingModel.Intervals(active), slot), "slot %s", slot)
		}
	}
}

var everyDay = []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

func TestComputeFreeSlots_MaxRange(t *testing.T) {
	f := newFixture(t)
	f.window(t, "w1", at(1, 9, 0), at(1, 12, 0), &availabilityModel.Recurrence{Weekdays: everyDay})

	from := at(1, 0, 0)

	got := f.slots(t, 15*time.Minute, from, from.Add(service.MaxRange(&config.Config{})))
	assert.Len(t, got, 90*12)

	_, err := f.svc.ComputeFreeSlots(context.Background(), property, 15*time.Minute, interval.Interval{Start: from, End: from.AddDate(400, 0, 0)})
	assert.True(t, errors.Is(err, failure.ErrInvalidRange), "got %v", err)
}

func TestMaxRange(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, 90*24*time.Hour, service.MaxRange(cfg))

	cfg.Scheduling.MaxRangeDays = 7
	assert.Equal(t, 7*24*time.Hour, service.MaxRange(cfg))
}

package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"visit/config"
	"visit/infras/otel"
	availabilityModel "visit/internal/domains/availability/model"
	availabilityRepo "visit/internal/domains/availability/repository"
	bookingModel "visit/internal/domains/booking/model"
	propertyService "visit/internal/domains/property/service"
	"visit/shared/constant"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/timezone"

	"github.com/rs/zerolog/log"
)

// ActiveBookings reads the pending and confirmed bookings of a property that end after from.
type ActiveBookings interface {
	ListActive(ctx context.Context, propertyID string, from time.Time) ([]bookingModel.Booking, error)
}

type Slot interface {
	// ComputeFreeSlots returns the bookable granularity-sized slots of rng in chronological order.
	// The sequence is computed from the stored state at call time and can be ranged over repeatedly.
	ComputeFreeSlots(ctx context.Context, propertyID string, granularity time.Duration, rng interval.Interval) (iter.Seq[interval.Interval], error)
}

const defaultMaxRangeDays = 90

type serviceImpl struct {
	windows   availabilityRepo.Availability
	bookings  ActiveBookings
	directory propertyService.Directory
	clock     timezone.Clock
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	windows availabilityRepo.Availability,
	bookings ActiveBookings,
	directory propertyService.Directory,
	clock timezone.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Slot {
	return &serviceImpl{
		windows:   windows,
		bookings:  bookings,
		directory: directory,
		clock:     clock,
		cfg:       cfg,
		otel:      otel,
	}
}

// MaxRange is the longest range a single slot query may span.
func MaxRange(cfg *config.Config) time.Duration {
	days := cfg.Scheduling.MaxRangeDays
	if days <= 0 {
		days = defaultMaxRangeDays
	}

	return time.Duration(days) * 24 * time.Hour
}

func (s *serviceImpl) ComputeFreeSlots(ctx context.Context, propertyID string, granularity time.Duration, rng interval.Interval) (res iter.Seq[interval.Interval], err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.ComputeFreeSlots")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if rng.Start.IsZero() || rng.End.IsZero() || !rng.Start.Before(rng.End) {
		return nil, failure.InvalidRange("range start must be before range end") //nolint:wrapcheck
	}

	if maxRange := MaxRange(s.cfg); rng.End.Sub(rng.Start) > maxRange {
		return nil, failure.InvalidRange(fmt.Sprintf("range must not span more than %d days", maxRange/(24*time.Hour))) //nolint:wrapcheck
	}

	if granularity <= 0 {
		return nil, failure.InvalidRange("granularity must be positive") //nolint:wrapcheck
	}

	exists, err := s.directory.PropertyExists(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check property: %w", err)
	}

	if !exists {
		return nil, failure.PropertyNotFound("property not found") //nolint:wrapcheck
	}

	windows, err := s.windows.ListByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}

	active, err := s.bookings.ListActive(ctx, propertyID, rng.Start)
	if err != nil {
		log.Error().Err(err).Msg("failed to list active bookings")

		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	open := interval.Subtract(availabilityModel.Covers(windows, rng), bookingModel.Intervals(active))
	now := s.clock.Now()

	return func(yield func(interval.Interval) bool) {
		for _, free := range open {
			for slot := range free.Split(granularity) {
				if slot.Start.Before(now) {
					continue
				}

				if !yield(slot) {
					return
				}
			}
		}
	}, nil
}

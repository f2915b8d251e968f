// Package arbiter turns a requested interval into a pending booking. The availability check, the
// overlap check and the insert run as one unit under the property lock, so of several requests
// racing for overlapping intervals of one property exactly one wins and the others get SlotTaken.
package arbiter

import (
	"context"
	"fmt"
	"time"

	"visit/config"
	"visit/infras/otel"
	availabilityModel "visit/internal/domains/availability/model"
	availabilityRepo "visit/internal/domains/availability/repository"
	"visit/internal/domains/booking/model"
	"visit/internal/domains/booking/repository"
	"visit/internal/domains/booking/statemachine"
	propertyService "visit/internal/domains/property/service"
	"visit/shared/constant"
	"visit/shared/failure"
	"visit/shared/interval"
	"visit/shared/lock"
	gModel "visit/shared/model"
	"visit/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultMinSlot = 15 * time.Minute

type Arbiter interface {
	Reserve(ctx context.Context, propertyID, requesterID string, in interval.Interval) (model.Booking, error)
}

type arbiterImpl struct {
	bookings  repository.Booking
	windows   availabilityRepo.Availability
	directory propertyService.Directory
	locker    lock.Locker
	clock     timezone.Clock
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	bookings repository.Booking,
	windows availabilityRepo.Availability,
	directory propertyService.Directory,
	locker lock.Locker,
	clock timezone.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Arbiter {
	return &arbiterImpl{
		bookings:  bookings,
		windows:   windows,
		directory: directory,
		locker:    locker,
		clock:     clock,
		cfg:       cfg,
		otel:      otel,
	}
}

// MinSlot is the shortest interval that can be booked.
func MinSlot(cfg *config.Config) time.Duration {
	if cfg.Scheduling.MinSlotMinutes <= 0 {
		return defaultMinSlot
	}

	return time.Duration(cfg.Scheduling.MinSlotMinutes) * time.Minute
}

func (a *arbiterImpl) Reserve(ctx context.Context, propertyID, requesterID string, in interval.Interval) (res model.Booking, err error) {
	ctx, scope := a.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".arbiter.Reserve")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{"property.id": propertyID, "interval": in.String()})

	if err = in.Validate(); err != nil {
		return res, err
	}

	now := a.clock.Now()

	if in.Start.Before(now) {
		return res, failure.InvalidInterval("cannot book an interval that already started") //nolint:wrapcheck
	}

	if minSlot := MinSlot(a.cfg); in.Duration() < minSlot {
		return res, failure.InvalidInterval(fmt.Sprintf("interval is shorter than the minimum of %s", minSlot)) //nolint:wrapcheck
	}

	ownerID, found, err := a.directory.OwnerOf(ctx, propertyID)
	if err != nil {
		return res, fmt.Errorf("failed to resolve property owner: %w", err)
	}

	if !found {
		return res, failure.PropertyNotFound("property not found") //nolint:wrapcheck
	}

	isHirer, err := a.directory.HasRole(ctx, requesterID, constant.RoleHirer)
	if err != nil {
		return res, fmt.Errorf("failed to check requester role: %w", err)
	}

	if !isHirer {
		return res, failure.NotAuthorized("only hirers can request visits") //nolint:wrapcheck
	}

	release, err := a.locker.Acquire(ctx, lock.PropertyKey(propertyID), lock.Wait(a.cfg))
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	defer release()

	windows, err := a.windows.ListByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return res, fmt.Errorf("failed to list availability windows: %w", err)
	}

	if !interval.AnyContains(availabilityModel.Covers(windows, in), in) {
		return res, failure.NoAvailability("no availability window covers the requested interval") //nolint:wrapcheck
	}

	active, err := a.bookings.ListActive(ctx, propertyID, in.Start)
	if err != nil {
		log.Error().Err(err).Msg("failed to list active bookings")

		return res, fmt.Errorf("failed to list active bookings: %w", err)
	}

	if interval.AnyOverlaps(model.Intervals(active), in) {
		return res, failure.SlotTaken("the requested interval overlaps an active booking") //nolint:wrapcheck
	}

	booking := model.Booking{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		OwnerID:     ownerID,
		RequesterID: requesterID,
		StartAt:     in.Start,
		EndAt:       in.End,
		Status:      model.StatusPending,
		Metadata:    gModel.NewMetadata(requesterID, now),
	}

	entry := model.HistoryEntry{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Status:    model.StatusPending,
		ActorID:   requesterID,
		ActorRole: string(statemachine.ActorRequester),
		At:        now,
	}

	if err = a.bookings.Insert(ctx, booking, entry); err != nil {
		log.Error().Err(err).Msg("failed to insert booking")

		return res, err //nolint:wrapcheck
	}

	return booking, nil
}

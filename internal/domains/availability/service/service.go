package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"visit/config"
	"visit/infras/otel"
	"visit/internal/domains/availability/model"
	"visit/internal/domains/availability/model/dto"
	"visit/internal/domains/availability/repository"
	bookingModel "visit/internal/domains/booking/model"
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

// ActiveBookings reads the pending and confirmed bookings of a property that end after from.
type ActiveBookings interface {
	ListActive(ctx context.Context, propertyID string, from time.Time) ([]bookingModel.Booking, error)
}

type Availability interface {
	Publish(ctx context.Context, ownerID, propertyID string, draft dto.Draft) (model.Window, error)
	Update(ctx context.Context, callerID, windowID string, draft dto.Draft) (model.Window, []string, error)
	Remove(ctx context.Context, callerID, windowID string) ([]string, error)
	ListByProperty(ctx context.Context, propertyID string) ([]model.Window, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Window, error)
}

type serviceImpl struct {
	repo      repository.Availability
	bookings  ActiveBookings
	directory propertyService.Directory
	locker    lock.Locker
	clock     timezone.Clock
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Availability,
	bookings ActiveBookings,
	directory propertyService.Directory,
	locker lock.Locker,
	clock timezone.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Availability {
	return &serviceImpl{
		repo:      repo,
		bookings:  bookings,
		directory: directory,
		locker:    locker,
		clock:     clock,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Publish(ctx context.Context, ownerID, propertyID string, draft dto.Draft) (res model.Window, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Publish")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = draft.Interval.Validate(); err != nil {
		return res, err
	}

	exists, err := s.directory.PropertyExists(ctx, propertyID)
	if err != nil {
		return res, fmt.Errorf("failed to check property: %w", err)
	}

	if !exists {
		return res, failure.PropertyNotFound("property not found") //nolint:wrapcheck
	}

	owns, err := s.directory.IsOwnerOf(ctx, ownerID, propertyID)
	if err != nil {
		return res, fmt.Errorf("failed to check property ownership: %w", err)
	}

	if !owns {
		return res, failure.NotAuthorized("only the property owner can publish availability") //nolint:wrapcheck
	}

	release, err := s.locker.Acquire(ctx, lock.PropertyKey(propertyID), lock.Wait(s.cfg))
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	defer release()

	existing, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return res, fmt.Errorf("failed to list availability windows: %w", err)
	}

	window := model.Window{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		OwnerID:    ownerID,
		StartAt:    draft.Interval.Start,
		EndAt:      draft.Interval.End,
		Recurrence: draft.Recurrence,
		Metadata:   gModel.NewMetadata(ownerID, s.clock.Now()),
	}

	merged, absorbed, err := normalize(window, existing)
	if err != nil {
		return res, err
	}

	if err = s.repo.Replace(ctx, absorbed, []model.Window{merged}); err != nil {
		log.Error().Err(err).Msg("failed to save availability window")

		return res, fmt.Errorf("failed to save availability window: %w", err)
	}

	scope.SetAttribute("availability.absorbed", len(absorbed))

	return merged, nil
}

func (s *serviceImpl) Update(ctx context.Context, callerID, windowID string, draft dto.Draft) (res model.Window, uncovered []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = draft.Interval.Validate(); err != nil {
		return res, nil, err
	}

	current, err := s.owned(ctx, callerID, windowID)
	if err != nil {
		return res, nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.PropertyKey(current.PropertyID), lock.Wait(s.cfg))
	if err != nil {
		return res, nil, err //nolint:wrapcheck
	}
	defer release()

	before, err := s.repo.ListByProperty(ctx, current.PropertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return res, nil, fmt.Errorf("failed to list availability windows: %w", err)
	}

	idx := slices.IndexFunc(before, func(w model.Window) bool { return w.ID == windowID })
	if idx < 0 {
		return res, nil, failure.NotFound("availability window not found") //nolint:wrapcheck
	}

	updated := before[idx]
	updated.StartAt = draft.Interval.Start
	updated.EndAt = draft.Interval.End
	updated.Recurrence = draft.Recurrence
	updated.ModifiedAt = s.clock.Now()
	updated.ModifiedBy = callerID

	merged, absorbed, err := normalize(updated, before)
	if err != nil {
		return res, nil, err
	}

	if err = s.repo.Replace(ctx, absorbed, []model.Window{merged}); err != nil {
		log.Error().Err(err).Msg("failed to update availability window")

		return res, nil, fmt.Errorf("failed to update availability window: %w", err)
	}

	after := slices.DeleteFunc(slices.Clone(before), func(w model.Window) bool {
		return w.ID == windowID || slices.Contains(absorbed, w.ID)
	})
	after = append(after, merged)

	uncovered, err = s.uncovered(ctx, current.PropertyID, before, after)
	if err != nil {
		return merged, nil, err
	}

	return merged, uncovered, nil
}

func (s *serviceImpl) Remove(ctx context.Context, callerID, windowID string) (uncovered []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Remove")
	defer scope.End()
	defer scope.TraceIfError(&err)

	current, err := s.owned(ctx, callerID, windowID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.PropertyKey(current.PropertyID), lock.Wait(s.cfg))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer release()

	before, err := s.repo.ListByProperty(ctx, current.PropertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}

	if !slices.ContainsFunc(before, func(w model.Window) bool { return w.ID == windowID }) {
		return nil, failure.NotFound("availability window not found") //nolint:wrapcheck
	}

	if err = s.repo.Replace(ctx, []string{windowID}, nil); err != nil {
		log.Error().Err(err).Msg("failed to remove availability window")

		return nil, fmt.Errorf("failed to remove availability window: %w", err)
	}

	after := slices.DeleteFunc(slices.Clone(before), func(w model.Window) bool { return w.ID == windowID })

	return s.uncovered(ctx, current.PropertyID, before, after)
}

func (s *serviceImpl) ListByProperty(ctx context.Context, propertyID string) (res []model.Window, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.ListByProperty")
	defer scope.End()
	defer scope.TraceIfError(&err)

	res, err = s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) ListByOwner(ctx context.Context, ownerID string) (res []model.Window, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.ListByOwner")
	defer scope.End()
	defer scope.TraceIfError(&err)

	res, err = s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availability windows")

		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) owned(ctx context.Context, callerID, windowID string) (model.Window, error) {
	current, err := s.repo.Get(ctx, windowID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability window")

		return current, fmt.Errorf("failed to get availability window: %w", err)
	}

	if current.ID == constant.Empty {
		return current, failure.NotFound("availability window not found") //nolint:wrapcheck
	}

	if current.OwnerID != callerID {
		return current, failure.OwnerMismatch("availability window belongs to another owner") //nolint:wrapcheck
	}

	return current, nil
}

// uncovered returns the active bookings that sat inside the window set before a write and no
// longer do after it.
func (s *serviceImpl) uncovered(ctx context.Context, propertyID string, before, after []model.Window) ([]string, error) {
	bookings, err := s.bookings.ListActive(ctx, propertyID, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active bookings")

		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	out := []string{}

	for _, b := range bookings {
		if covered(before, b.Interval()) && !covered(after, b.Interval()) {
			out = append(out, b.ID)
		}
	}

	if len(out) > 0 {
		log.Warn().Str("propertyID", propertyID).Strs("bookings", out).Msg("availability change left bookings outside published windows")
	}

	return out, nil
}

func covered(windows []model.Window, target interval.Interval) bool {
	return interval.AnyContains(model.Covers(windows, target), target)
}

// normalize merges target with every window of the same owner that it touches and that repeats
// the same way. It returns the merged window, which keeps target's id, and the ids it absorbed.
func normalize(target model.Window, existing []model.Window) (model.Window, []string, error) {
	merged := target
	absorbed := []string{}

	rest := slices.DeleteFunc(slices.Clone(existing), func(w model.Window) bool {
		return w.ID == target.ID || w.OwnerID != target.OwnerID
	})

	for changed := true; changed; {
		changed = false

		for i, w := range rest {
			if !w.Interval().Touches(merged.Interval()) {
				continue
			}

			if !model.SameRecurrence(w.Recurrence, merged.Recurrence) {
				if w.Interval().Overlaps(merged.Interval()) {
					return merged, nil, failure.InvalidInterval("window overlaps a window with a different recurrence") //nolint:wrapcheck
				}

				continue
			}

			union := merged.Interval().Union(w.Interval())
			merged.StartAt = union.Start
			merged.EndAt = union.End

			absorbed = append(absorbed, w.ID)
			rest = slices.Delete(rest, i, i+1)
			changed = true

			break
		}
	}

	return merged, absorbed, nil
}

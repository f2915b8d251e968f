package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visit/config"
	"visit/infras/otel"
	"visit/internal/domains/booking/arbiter"
	"visit/internal/domains/booking/model"
	"visit/internal/domains/booking/model/dto"
	"visit/internal/domains/booking/repository"
	"visit/internal/domains/booking/statemachine"
	"visit/internal/events"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
	"visit/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sweepBatchSize = 100

// Ledger is the single source of truth for bookings. Every mutation goes through Execute with one
// of the model.Command variants; reads never change stored state.
type Ledger interface {
	Execute(ctx context.Context, cmd model.Command) (model.Booking, error)
	Get(ctx context.Context, callerID, id string) (dto.BookingResponse, error)
	ListByRequester(ctx context.Context, requesterID string, status model.Status, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	ListByOwner(ctx context.Context, ownerID string, status model.Status, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	CompleteElapsed(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo      repository.Booking
	arbiter   arbiter.Arbiter
	machine   statemachine.Machine
	publisher events.Publisher
	clock     timezone.Clock
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	arb arbiter.Arbiter,
	publisher events.Publisher,
	clock timezone.Clock,
	cfg *config.Config,
	otel otel.Otel,
) Ledger {
	return &serviceImpl{
		repo:    repo,
		arbiter: arb,
		machine: statemachine.New(statemachine.Policy{
			CancellationCutoff: time.Duration(cfg.Scheduling.CancellationCutoffHours) * time.Hour,
		}),
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Execute(ctx context.Context, cmd model.Command) (res model.Booking, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Execute")
	defer scope.End()
	defer scope.TraceIfError(&err)

	var actorID string

	switch c := cmd.(type) {
	case model.Reserve:
		actorID = c.RequesterID
		res, err = s.arbiter.Reserve(ctx, c.PropertyID, c.RequesterID, c.Interval)
	case model.Confirm:
		actorID = c.ActorID
		res, err = s.transition(ctx, c.BookingID, c.ActorID, model.StatusConfirmed, false)
	case model.Reject:
		actorID = c.ActorID
		res, err = s.transition(ctx, c.BookingID, c.ActorID, model.StatusRejected, false)
	case model.Cancel:
		actorID = c.ActorID
		res, err = s.transition(ctx, c.BookingID, c.ActorID, model.StatusCancelled, false)
	case model.Complete:
		actorID = c.ActorID
		res, err = s.transition(ctx, c.BookingID, c.ActorID, model.StatusCompleted, c.System)
	default:
		return res, failure.BadRequestFromString(fmt.Sprintf("unsupported booking command %T", cmd)) //nolint:wrapcheck
	}

	if err != nil {
		return res, err
	}

	events.Emit(ctx, s.publisher, events.FromBooking(res, actorID, res.ModifiedAt))

	return res, nil
}

func (s *serviceImpl) transition(ctx context.Context, bookingID, actorID string, to model.Status, system bool) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	actor := statemachine.Classify(booking, actorID)
	if system {
		actor = statemachine.ActorSystem
	}

	now := s.clock.Now()

	if err = s.machine.Check(booking, to, actor, now); err != nil {
		return booking, err //nolint:wrapcheck
	}

	entry := model.HistoryEntry{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Status:    to,
		ActorID:   actorID,
		ActorRole: string(actor),
		At:        now,
	}

	applied, err := s.repo.Transition(ctx, booking.ID, booking.Status, to, entry)
	if err != nil {
		log.Error().Err(err).Msg("failed to transition booking")

		return booking, fmt.Errorf("failed to transition booking: %w", err)
	}

	if !applied {
		return booking, failure.IllegalTransition(fmt.Sprintf("booking changed from %s concurrently", booking.Status)) //nolint:wrapcheck
	}

	booking.Status = to
	booking.ModifiedAt = now
	booking.ModifiedBy = actorID

	return booking, nil
}

func (s *serviceImpl) Get(ctx context.Context, callerID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if statemachine.Classify(booking, callerID) == statemachine.ActorStranger {
		return res, failure.NotAuthorized("only the owner or the requester can view this booking") //nolint:wrapcheck
	}

	history, err := s.repo.History(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking history")

		return res, fmt.Errorf("failed to get booking history: %w", err)
	}

	res.FromModel(booking)
	res.WithHistory(history)

	return res, nil
}

func (s *serviceImpl) ListByRequester(ctx context.Context, requesterID string, status model.Status, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ListByRequester")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return s.list(ctx, repository.ListQuery{RequesterID: requesterID, Status: status, Params: params})
}

func (s *serviceImpl) ListByOwner(ctx context.Context, ownerID string, status model.Status, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ListByOwner")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return s.list(ctx, repository.ListQuery{OwnerID: ownerID, Status: status, Params: params})
}

func (s *serviceImpl) list(ctx context.Context, query repository.ListQuery) (res dto.GetBookingsResponse, err error) {
	if query.Status != constant.Empty && !query.Status.Valid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown booking status %q", query.Status)) //nolint:wrapcheck
	}

	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	res.FromModels(bookings, total, query.Params.Limit)

	return res, nil
}

// CompleteElapsed moves confirmed bookings whose interval has ended to completed, acting as the
// system. It returns how many bookings it completed.
func (s *serviceImpl) CompleteElapsed(ctx context.Context) (completed int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CompleteElapsed")
	defer scope.End()
	defer scope.TraceIfError(&err)

	for {
		elapsed, err := s.repo.ListElapsed(ctx, s.clock.Now(), sweepBatchSize)
		if err != nil {
			log.Error().Err(err).Msg("failed to list elapsed bookings")

			return completed, fmt.Errorf("failed to list elapsed bookings: %w", err)
		}

		progressed := 0

		for _, booking := range elapsed {
			_, err := s.Execute(ctx, model.Complete{BookingID: booking.ID, ActorID: constant.RoleSystem, System: true})
			if errors.Is(err, failure.ErrIllegalTransition) {
				continue
			}

			if err != nil {
				log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to complete booking")

				continue
			}

			progressed++
		}

		completed += progressed

		if len(elapsed) < sweepBatchSize || progressed == 0 {
			return completed, nil
		}
	}
}

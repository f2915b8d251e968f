package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"visit/infras/otel"
	"visit/infras/postgres"
	"visit/internal/domains/booking/model"
	"visit/shared"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	"visit/shared/failure"
	gRepo "visit/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const argCurrentStatus = "current_status"

var sortableColumns = []string{model.FieldStartAt, constant.FieldCreatedAt, model.FieldStatus}

// ListQuery selects bookings of one requester or one owner, optionally by status.
type ListQuery struct {
	RequesterID string
	OwnerID     string
	Status      model.Status
	Params      gDto.QueryParams
}

// Booking stores bookings with their status history. Transition is a compare-and-set on the
// current status: it reports false, and writes nothing, when the stored status is not from.
type Booking interface {
	Insert(ctx context.Context, booking model.Booking, entry model.HistoryEntry) error
	Get(ctx context.Context, id string) (model.Booking, error)
	History(ctx context.Context, id string) ([]model.HistoryEntry, error)
	ListActive(ctx context.Context, propertyID string, from time.Time) ([]model.Booking, error)
	List(ctx context.Context, query ListQuery) ([]model.Booking, int, error)
	Transition(ctx context.Context, id string, from, to model.Status, entry model.HistoryEntry) (bool, error)
	ListElapsed(ctx context.Context, now time.Time, limit int) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	history gRepo.Repository[model.HistoryEntry]
	db      *postgres.Connection
	otel    otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		history:    gRepo.NewRepository[model.HistoryEntry](model.HistoryEntityName, model.HistoryTableName, model.FieldHistoryID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking, entry model.HistoryEntry) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Insert")
	defer scope.End()

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.InsertTx(ctx, tx, booking); err != nil {
			return err //nolint:wrapcheck
		}

		return r.history.InsertTx(ctx, tx, entry) //nolint:wrapcheck
	})
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeExclusion {
		return failure.SlotTaken("the requested interval overlaps an active booking") //nolint:wrapcheck
	}

	scope.TraceError(err)

	return fmt.Errorf("failed to insert booking: %w", err)
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Get")
	defer scope.End()

	return r.Repository.Get(postgres.UsePrimary(ctx), shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) History(ctx context.Context, id string) ([]model.HistoryEntry, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.History")
	defer scope.End()

	params := gDto.QueryParams{SortBy: model.FieldHistoryAt, SortDir: gDto.SortDirAsc}

	return r.history.GetAll(ctx, params, shared.FilterByID(id, model.FieldHistoryBookingID, model.HistoryTableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) ListActive(ctx context.Context, propertyID string, from time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListActive")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldPropertyID, Value: propertyID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.ActiveStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{Field: model.FieldEndAt, Value: from, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{SortBy: model.FieldStartAt, SortDir: gDto.SortDirAsc}

	return r.GetAll(postgres.UsePrimary(ctx), params, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) List(ctx context.Context, query ListQuery) ([]model.Booking, int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.List")
	defer scope.End()

	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if query.RequesterID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldRequesterID, Value: query.RequesterID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if query.OwnerID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldOwnerID, Value: query.OwnerID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if query.Status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldStatus, Value: query.Status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	params := query.Params
	if !slices.Contains(sortableColumns, params.SortBy) {
		params.SortBy = model.FieldStartAt
	}

	if params.SortDir == constant.Empty {
		params.SortDir = gDto.SortDirAsc
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	bookings, err := r.GetAll(ctx, params, filter)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	return bookings, total, nil
}

func (r *repositoryImpl) Transition(ctx context.Context, id string, from, to model.Status, entry model.HistoryEntry) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Transition")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: argCurrentStatus, Field: model.FieldStatus, Value: from, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	changes := map[string]any{
		model.FieldStatus:        to,
		constant.FieldModifiedAt: entry.At,
		constant.FieldModifiedBy: entry.ActorID,
	}

	applied := false

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		affected, err := r.UpdateTx(ctx, tx, changes, filter)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return nil
		}

		applied = true

		return r.history.InsertTx(ctx, tx, entry) //nolint:wrapcheck
	})
	if err != nil {
		scope.TraceError(err)

		return false, fmt.Errorf("failed to transition booking: %w", err)
	}

	return applied, nil
}

func (r *repositoryImpl) ListElapsed(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListElapsed")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusConfirmed, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldEndAt, Value: now, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{Limit: limit, SortBy: model.FieldEndAt, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, filter) //nolint:wrapcheck
}

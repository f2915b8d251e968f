package repository

import (
	"context"
	"fmt"
	"slices"

	"visit/infras/otel"
	"visit/infras/postgres"
	"visit/internal/domains/availability/model"
	"visit/shared"
	"visit/shared/constant"
	gDto "visit/shared/dto"
	gRepo "visit/shared/repository"
	"visit/shared/timezone"

	"github.com/jmoiron/sqlx"
)

// Availability stores published windows. Replace applies a normalization result atomically.
type Availability interface {
	Get(ctx context.Context, id string) (model.Window, error)
	ListByProperty(ctx context.Context, propertyID string) ([]model.Window, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Window, error)
	Replace(ctx context.Context, remove []string, upsert []model.Window) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Window]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Availability {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Window](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Window, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.Get")
	defer scope.End()

	window, err := r.Repository.Get(postgres.UsePrimary(ctx), shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return model.Window{}, err //nolint:wrapcheck
	}

	return window.InLocation(timezone.GetLocation()), nil
}

func (r *repositoryImpl) ListByProperty(ctx context.Context, propertyID string) ([]model.Window, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.ListByProperty")
	defer scope.End()

	return r.list(ctx, model.FieldPropertyID, propertyID)
}

func (r *repositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]model.Window, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.ListByOwner")
	defer scope.End()

	return r.list(ctx, model.FieldOwnerID, ownerID)
}

func (r *repositoryImpl) list(ctx context.Context, field, value string) ([]model.Window, error) {
	params := gDto.QueryParams{SortBy: model.FieldStartAt, SortDir: gDto.SortDirAsc}
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    field,
				Value:    value,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	windows, err := r.Repository.GetAll(postgres.UsePrimary(ctx), params, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	loc := timezone.GetLocation()
	for i := range windows {
		windows[i] = windows[i].InLocation(loc)
	}

	slices.SortFunc(windows, model.Compare)

	return windows, nil
}

func (r *repositoryImpl) Replace(ctx context.Context, remove []string, upsert []model.Window) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.Replace")
	defer scope.End()

	ids := slices.Clone(remove)
	for _, w := range upsert {
		ids = append(ids, w.ID)
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if len(ids) > 0 {
			filter := gDto.FilterGroup{
				Filters: []any{
					gDto.Filter{
						Field:    model.FieldID,
						Value:    ids,
						Operator: gDto.FilterOperatorIn,
						Table:    model.TableName,
					},
				},
			}

			if err := r.DeleteTx(ctx, tx, filter); err != nil {
				return err //nolint:wrapcheck
			}
		}

		if len(upsert) > 0 {
			return r.InsertBulkTx(ctx, tx, upsert) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to replace availability windows: %w", err)
	}

	return nil
}

package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/directory_mock.go -package=mocks

import (
	"context"
	"fmt"

	"visit/config"
	"visit/infras/otel"
	"visit/internal/domains/property/model"
	"visit/internal/domains/property/repository"
	userModel "visit/internal/domains/user/model"
	userRepo "visit/internal/domains/user/repository"
	"visit/shared"
	"visit/shared/cache"
	"visit/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetProperty = "property:get"
	cacheGetUserRole = "user:role"
)

// Directory answers the existence, ownership and role questions the scheduler asks before
// mutating anything. Answers may be served from cache for up to the configured TTL.
type Directory interface {
	PropertyExists(ctx context.Context, propertyID string) (bool, error)
	OwnerOf(ctx context.Context, propertyID string) (string, bool, error)
	IsOwnerOf(ctx context.Context, userID, propertyID string) (bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type propertyEntry struct {
	Exists  bool   `json:"exists"`
	OwnerID string `json:"owner_id"`
}

type userEntry struct {
	Exists bool   `json:"exists"`
	Role   string `json:"role"`
}

type serviceImpl struct {
	repo     repository.Property
	userRepo userRepo.User
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Property, userRepo userRepo.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Directory {
	return &serviceImpl{
		repo:     repo,
		userRepo: userRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) PropertyExists(ctx context.Context, propertyID string) (res bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".PropertyExists")
	defer scope.End()
	defer scope.TraceIfError(&err)

	entry, err := s.property(ctx, propertyID)
	if err != nil {
		return false, err
	}

	return entry.Exists, nil
}

func (s *serviceImpl) OwnerOf(ctx context.Context, propertyID string) (owner string, found bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".OwnerOf")
	defer scope.End()
	defer scope.TraceIfError(&err)

	entry, err := s.property(ctx, propertyID)
	if err != nil {
		return "", false, err
	}

	return entry.OwnerID, entry.Exists, nil
}

func (s *serviceImpl) IsOwnerOf(ctx context.Context, userID, propertyID string) (res bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IsOwnerOf")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if userID == constant.Empty {
		return false, nil
	}

	entry, err := s.property(ctx, propertyID)
	if err != nil {
		return false, err
	}

	return entry.Exists && entry.OwnerID == userID, nil
}

func (s *serviceImpl) HasRole(ctx context.Context, userID, role string) (res bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HasRole")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if userID == constant.Empty {
		return false, nil
	}

	cacheKey := shared.BuildCacheKey(cacheGetUserRole, userID)

	var entry userEntry
	if err := s.cache.Get(ctx, cacheKey, &entry); err == nil {
		return entry.Exists && entry.Role == role, nil
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return false, fmt.Errorf("failed to get user: %w", err)
	}

	entry = userEntry{Exists: user.ID != constant.Empty && user.Active, Role: user.Role}
	s.remember(ctx, cacheKey, entry)

	return entry.Exists && entry.Role == role, nil
}

func (s *serviceImpl) property(ctx context.Context, propertyID string) (propertyEntry, error) {
	if propertyID == constant.Empty {
		return propertyEntry{}, nil
	}

	cacheKey := shared.BuildCacheKey(cacheGetProperty, propertyID)

	var entry propertyEntry
	if err := s.cache.Get(ctx, cacheKey, &entry); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for property")

		return entry, nil
	}

	prop, err := s.repo.Get(ctx, shared.FilterByID(propertyID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get property")

		return propertyEntry{}, fmt.Errorf("failed to get property: %w", err)
	}

	entry = propertyEntry{Exists: prop.ID != constant.Empty && prop.Active, OwnerID: prop.OwnerID}
	s.remember(ctx, cacheKey, entry)

	return entry, nil
}

func (s *serviceImpl) remember(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save directory entry to cache")
		}
	}()
}

//go:build wireinject
// +build wireinject

package di

import (
	"visit/config"
	"visit/infras/jwt"
	"visit/infras/kafka"
	"visit/infras/otel"
	"visit/infras/postgres"
	"visit/infras/redis"
	"visit/internal/events"
	"visit/permissions"
	"visit/shared/cache"
	"visit/shared/lock"
	"visit/shared/timezone"
	"visit/transport/http"
	"visit/transport/http/middleware"
	"visit/transport/http/router"

	availabilityRepository "visit/internal/domains/availability/repository"
	availabilityService "visit/internal/domains/availability/service"
	"visit/internal/domains/booking/arbiter"
	bookingRepository "visit/internal/domains/booking/repository"
	bookingService "visit/internal/domains/booking/service"
	propertyRepository "visit/internal/domains/property/repository"
	propertyService "visit/internal/domains/property/service"
	slotService "visit/internal/domains/slot/service"
	userRepository "visit/internal/domains/user/repository"
	availabilityHandler "visit/internal/handlers/availability"
	bookingHandler "visit/internal/handlers/booking"
	slotHandler "visit/internal/handlers/slot"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.New,
	timezone.NewClock,
	events.NewKafkaPublisher,
)

var propertyDomain = wire.NewSet(
	propertyRepository.New,
	userRepository.New,
	propertyService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
	wire.Bind(new(availabilityService.ActiveBookings), new(bookingRepository.Booking)),
)

var slotDomain = wire.NewSet(
	slotService.New,
	wire.Bind(new(slotService.ActiveBookings), new(bookingRepository.Booking)),
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	arbiter.New,
	bookingService.New,
)

var domains = wire.NewSet(
	propertyDomain,
	availabilityDomain,
	slotDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	availabilityHandler.New,
	slotHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}

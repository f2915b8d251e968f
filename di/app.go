package di

import (
	"visit/config"
	"visit/infras/kafka"
	"visit/infras/otel"
	bookingService "visit/internal/domains/booking/service"
	"visit/transport/http"
)

// App is everything the entrypoints start: the HTTP server plus the background workers that
// share its ledger and broker connection.
type App struct {
	Config *config.Config
	HTTP   *http.HTTP
	Ledger bookingService.Ledger
	Kafka  kafka.Client
	Otel   otel.Otel
}

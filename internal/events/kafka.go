package events

import (
	"context"
	"fmt"

	"visit/config"
	"visit/infras/kafka"
	"visit/infras/otel"
	"visit/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const defaultTopic = "booking-events"

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

// NewKafkaPublisher publishes events keyed by property id, so events of one property keep their order.
func NewKafkaPublisher(client kafka.Client, cfg *config.Config, otl otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  Topic(cfg),
		otel:   otl,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttribute("event.type", string(event.Type))

	err = p.client.SendMessages(ctx, p.topic, kafka.Message{Key: event.PropertyID, Value: event})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

// Topic returns the configured booking event topic.
func Topic(cfg *config.Config) string {
	if cfg.Kafka.Topic == constant.Empty {
		return defaultTopic
	}

	return cfg.Kafka.Topic
}

// Subscribe consumes booking events until ctx is done and hands each decoded event to handle.
func Subscribe(ctx context.Context, client kafka.Client, cfg *config.Config, handle func(context.Context, BookingEvent)) {
	client.Consume(ctx, cfg.Kafka.ConsumerGroup, Topic(cfg), func(msg kafkaGo.Message) {
		event, err := kafka.Decode[BookingEvent](msg)
		if err != nil {
			log.Error().Err(err).Str("key", string(msg.Key)).Msg("skipping undecodable booking event")

			return
		}

		handle(ctx, event)
	})
}

// LogEvent is the default subscriber: it records each event for downstream notification tooling.
func LogEvent(_ context.Context, event BookingEvent) {
	log.Info().
		Str("type", string(event.Type)).
		Str("bookingID", event.BookingID).
		Str("propertyID", event.PropertyID).
		Str("actorID", event.ActorID).
		Msg("booking event")
}

// Emit publishes event on a detached context and only logs failures.
func Emit(ctx context.Context, publisher Publisher, event BookingEvent) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := publisher.Publish(c, event); err != nil {
			log.Error().Err(err).Str("type", string(event.Type)).Str("bookingID", event.BookingID).Msg("failed to publish booking event")
		}
	}()
}

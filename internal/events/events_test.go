package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visit/config"
	"visit/infras/kafka"
	"visit/infras/otel/mocks"
	"visit/internal/domains/booking/model"
	"visit/internal/events"
	eventMocks "visit/internal/events/mocks"
)

type fakeClient struct {
	topic    string
	sent     []kafka.Message
	sendErr  error
	incoming []kafkaGo.Message
	group    string
}

func (f *fakeClient) SendMessages(_ context.Context, topic string, messages ...kafka.Message) error {
	f.topic = topic
	f.sent = append(f.sent, messages...)

	return f.sendErr
}

func (f *fakeClient) Consume(_ context.Context, consumerGroup, topic string, handler func(message kafkaGo.Message)) {
	f.group = consumerGroup
	f.topic = topic

	for _, msg := range f.incoming {
		handler(msg)
	}
}

func (f *fakeClient) Close() error {
	return nil
}

func sampleBooking(status model.Status) model.Booking {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	return model.Booking{
		ID:          "b1",
		PropertyID:  "P1",
		OwnerID:     "owner-1",
		RequesterID: "hirer-1",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		Status:      status,
	}
}

func TestFromBooking(t *testing.T) {
	at := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		status model.Status
		want   events.Type
	}{
		{model.StatusPending, events.BookingRequested},
		{model.StatusConfirmed, events.BookingConfirmed},
		{model.StatusRejected, events.BookingRejected},
		{model.StatusCancelled, events.BookingCancelled},
		{model.StatusCompleted, events.BookingCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			event := events.FromBooking(sampleBooking(tt.status), "actor", at)

			assert.Equal(t, tt.want, event.Type)
			assert.Equal(t, "b1", event.BookingID)
			assert.Equal(t, "owner-1", event.OwnerID)
			assert.Equal(t, "actor", event.ActorID)
			assert.Equal(t, at, event.OccurredAt)
		})
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	cfg := &config.Config{}

	publisher := events.NewKafkaPublisher(client, cfg, mocks.NewOtel())

	event := events.FromBooking(sampleBooking(model.StatusPending), "hirer-1", time.Now())
	require.NoError(t, publisher.Publish(context.Background(), event))

	assert.Equal(t, "booking-events", client.topic)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "P1", client.sent[0].Key)
	assert.Equal(t, event, client.sent[0].Value)

	client.sendErr = errors.New("broker down")
	err := publisher.Publish(context.Background(), event)
	assert.ErrorContains(t, err, "broker down")
}

func TestTopic(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "booking-events", events.Topic(cfg))

	cfg.Kafka.Topic = "visits"
	assert.Equal(t, "visits", events.Topic(cfg))
}

func TestSubscribe_SkipsUndecodable(t *testing.T) {
	event := events.FromBooking(sampleBooking(model.StatusConfirmed), "owner-1", time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	client := &fakeClient{
		incoming: []kafkaGo.Message{
			{Key: []byte("P1"), Value: []byte("{not json")},
			{Key: []byte("P1"), Value: payload},
		},
	}

	cfg := &config.Config{}
	cfg.Kafka.ConsumerGroup = "notifier"

	var got []events.BookingEvent

	events.Subscribe(context.Background(), client, cfg, func(_ context.Context, e events.BookingEvent) {
		got = append(got, e)
	})

	assert.Equal(t, "notifier", client.group)
	require.Len(t, got, 1)
	assert.Equal(t, events.BookingConfirmed, got[0].Type)
	assert.True(t, event.Start.Equal(got[0].Start))
}

func TestEmit_IgnoresPublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := eventMocks.NewMockPublisher(ctrl)

	done := make(chan struct{})

	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ events.BookingEvent) error {
			defer close(done)

			assert.NoError(t, ctx.Err())

			return errors.New("broker down")
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events.Emit(ctx, publisher, events.FromBooking(sampleBooking(model.StatusPending), "hirer-1", time.Now()))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
}

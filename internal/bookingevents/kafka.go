package bookingevents

import (
	"context"
	"parkbook/pkg/kafka"
	"parkbook/pkg/logger"
	"parkbook/pkg/middleware"
	"time"
)

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer messagePublisher
	log      *logger.Logger
	timeout  time.Duration
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger, timeout time.Duration, source string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
		timeout:  timeout,
		source:   source,
	}
}

// Publish keys the record by booking id so all changes to one booking land on
// the same partition in order. It detaches from the request context so a
// client disconnect right after commit does not drop the event.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(ev.BookingID).
		WithValue(ev).
		WithEventType(ev.Kind).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithTimestamp(ev.At).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "booking_id", ev.BookingID, "kind", ev.Kind, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"booking_id", ev.BookingID,
			"kind", ev.Kind,
			"event_id", msg.GetEventID(),
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "booking_id", ev.BookingID, "kind", ev.Kind)
}

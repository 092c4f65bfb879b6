package bookingevents

import (
	"context"
	"fmt"
	"parkbook/pkg/kafka"
	"parkbook/pkg/logger"
)

// AuditHandler writes every lifecycle event to the structured log. Records
// that cannot be decoded are permanent failures and go to the DLQ.
func AuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var ev Event
		if err := msg.DecodeValue(&ev); err != nil {
			return err
		}
		if ev.BookingID == "" || ev.Kind == "" {
			return kafka.NewPermanentError("invalid message", fmt.Errorf("booking event missing booking_id or kind"))
		}

		log.Info("Booking lifecycle event",
			"event_id", msg.GetEventID(),
			"kind", ev.Kind,
			"booking_id", ev.BookingID,
			"user_id", ev.UserID,
			"resource_id", ev.ResourceID,
			"status", ev.Status,
			"price", ev.Price,
			"actor_id", ev.ActorID,
			"at", ev.At,
			"correlation_id", msg.GetCorrelationID(),
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
}

package bookingevents

import (
	"context"
	"encoding/json"
	"errors"
	"parkbook/pkg/kafka"
	"parkbook/pkg/logger"
	"parkbook/pkg/middleware"
	"testing"
	"time"
)

type mockProducer struct {
	PublishFunc func(ctx context.Context, msg kafka.Message) error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	return m.PublishFunc(ctx, msg)
}

func TestKafkaPublisherPublish(t *testing.T) {
	var got kafka.Message
	var hadDeadline bool
	p := &KafkaPublisher{
		producer: &mockProducer{PublishFunc: func(ctx context.Context, msg kafka.Message) error {
			got = msg
			_, hadDeadline = ctx.Deadline()
			return nil
		}},
		log:     logger.Discard(),
		timeout: time.Second,
		source:  "park",
	}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	p.Publish(ctx, Event{
		BookingID:  "b1",
		Kind:       RoomBookingCreated,
		UserID:     "u1",
		ResourceID: "r1",
		Status:     "confirmed",
		Price:      3000,
	})

	if got.Key != "b1" {
		t.Fatalf("key = %q, want b1", got.Key)
	}
	if got.GetEventType() != RoomBookingCreated || got.GetCorrelationID() != "req-42" {
		t.Errorf("headers = %v", got.Headers)
	}
	if !hadDeadline {
		t.Error("publish should run under its own timeout")
	}

	var ev Event
	if err := json.Unmarshal(got.Value, &ev); err != nil {
		t.Fatalf("value is not an Event: %v", err)
	}
	if ev.Price != 3000 || ev.At.IsZero() {
		t.Errorf("decoded = %+v", ev)
	}
}

func TestKafkaPublisherSwallowsErrors(t *testing.T) {
	p := &KafkaPublisher{
		producer: &mockProducer{PublishFunc: func(ctx context.Context, msg kafka.Message) error {
			return errors.New("broker down")
		}},
		log:     logger.Discard(),
		timeout: time.Second,
	}

	p.Publish(context.Background(), Event{BookingID: "b1", Kind: EventBookingCancelled})
}

func TestAuditHandler(t *testing.T) {
	handler := AuditHandler(logger.Discard())

	good, _ := kafka.NewMessage().WithKey("b1").WithValue(Event{BookingID: "b1", Kind: EventBookingCreated}).Build()
	if err := handler(context.Background(), good); err != nil {
		t.Fatalf("good message: %v", err)
	}

	tests := []struct {
		name  string
		value []byte
	}{
		{"not json", []byte("nope")},
		{"missing fields", []byte(`{"status":"confirmed"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler(context.Background(), kafka.Message{Value: tt.value, Headers: map[string]string{}})
			if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
				t.Errorf("expected permanent error, got %v", err)
			}
		})
	}
}

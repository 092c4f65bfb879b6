package kafka

import (
	"context"
	"errors"
	"fmt"
	"parkbook/pkg/logger"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "confirmed"}).
		WithEventType("room_booking.created").
		WithCorrelationID("req-1").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("timestamp header should be set")
	}
	if msg.GetEventType() != "room_booking.created" || msg.GetCorrelationID() != "req-1" {
		t.Errorf("headers = %v", msg.Headers)
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["status"] != "confirmed" {
		t.Errorf("DecodeValue = %v, %v", decoded, err)
	}
}

func TestMessageBuilderEncodeFailure(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if ClassifyError(err) != ErrorTypePermanent {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 1; i <= 12; i++ {
		msg.IncrementRetryCount()
		if got := msg.GetRetryCount(); got != i {
			t.Fatalf("retry count = %d, want %d", got, i)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"wrapped permanent", fmt.Errorf("wrap: %w", NewPermanentError("x", nil)), ErrorTypePermanent},
		{"network", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"timeout", errors.New("i/o timeout"), ErrorTypeTransient},
		{"unknown", errors.New("weird"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}

	if ShouldRetry(NewTransientError("x", nil), 3, 3) {
		t.Error("should not retry past max")
	}
	if !ShouldRetry(NewTransientError("x", nil), 0, 3) {
		t.Error("transient error under max should retry")
	}
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "park.bookings", log: logger.Discard()}

	if err := p.Publish(context.Background(), Message{Value: []byte("{}")}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}

	var seen string
	p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		seen = msg.Topic
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("b1").WithValue("v").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.messages) != 1 || string(w.messages[0].Key) != "b1" {
		t.Fatalf("written = %+v", w.messages)
	}
	if seen != "park.bookings" {
		t.Errorf("middleware saw topic %q", seen)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Fatalf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducerDeadLettersFailedWrite(t *testing.T) {
	writeErr := errors.New("leader not available")
	w := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := &Producer{writer: w, dlqWriter: dlq, topic: "park.bookings", dlqTopic: "park.bookings.dlq", log: logger.Discard()}

	msg, _ := NewMessage().WithKey("b1").WithValue("v").Build()
	err := p.Publish(context.Background(), msg)
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected original error, got %v", err)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("dlq messages = %d, want 1", len(dlq.messages))
	}
	if got := header(dlq.messages[0], HeaderOriginalTopic); got != "park.bookings" {
		t.Errorf("original topic header = %q", got)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("caller's message headers must not be mutated")
	}
}

func TestConsumerProcessMessage(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantDLQ   int
	}{
		{"success", 0, nil, 1, 0},
		{"transient then success", 2, NewTransientError("flaky", nil), 3, 0},
		{"transient exhausts retries", 10, NewTransientError("flaky", nil), 4, 1},
		{"permanent goes straight to dlq", 10, NewPermanentError("bad", nil), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			dlq := &fakeWriter{}
			c := &Consumer{
				dlqWriter:  dlq,
				topic:      "park.bookings",
				groupID:    "audit",
				maxRetries: 3,
				log:        logger.Discard(),
				handler: func(ctx context.Context, msg Message) error {
					calls++
					if calls <= tt.failures {
						return tt.err
					}
					return nil
				},
			}

			msg, _ := NewMessage().WithKey("b1").WithValue("v").Build()
			_ = c.processMessage(context.Background(), msg)

			if calls != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, tt.wantCalls)
			}
			if len(dlq.messages) != tt.wantDLQ {
				t.Errorf("dlq messages = %d, want %d", len(dlq.messages), tt.wantDLQ)
			}
		})
	}
}

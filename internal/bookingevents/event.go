// Package bookingevents announces booking lifecycle changes on the message bus.
package bookingevents

import (
	"context"
	"time"
)

const (
	RoomBookingCreated   = "room_booking.created"
	RoomBookingUpdated   = "room_booking.updated"
	RoomBookingCancelled = "room_booking.cancelled"
	RoomBookingCompleted = "room_booking.completed"

	EventBookingCreated   = "event_booking.created"
	EventBookingCancelled = "event_booking.cancelled"
	EventBookingCompleted = "event_booking.completed"
)

const SchemaVersion = "1"

// Event is the payload published for every lifecycle change. ResourceID is the
// room id or event id depending on Kind.
type Event struct {
	BookingID  string    `json:"booking_id"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	Status     string    `json:"status"`
	Price      int64     `json:"price"`
	ActorID    string    `json:"actor_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher is fire-and-forget from the caller's point of view: bookings are
// already committed when it runs, so failures are logged, never surfaced.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

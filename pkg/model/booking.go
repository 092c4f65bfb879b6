package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

const (
	BookingKindRoom  = "room"
	BookingKindEvent = "event"
)

// IsTerminalStatus reports whether a booking in this status can no longer change.
func IsTerminalStatus(status string) bool {
	return status == BookingStatusCancelled || status == BookingStatusCompleted
}

// RoomBooking reserves one slot of a room for [StartTime, EndTime).
type RoomBooking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	RoomID      string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	SlotNumber  int       `json:"slot_number" bson:"slot_number" validate:"required,min=1"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required"`
	Price       int64     `json:"price" bson:"price" validate:"min=0"`
	PeopleCount int       `json:"people_count" bson:"people_count" validate:"required,min=1,max=1000"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled completed"`
	CreatedBy   string    `json:"created_by" bson:"created_by" validate:"required,mongodb"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// RoomBookingRequest is what a worker submits when booking a room for a client.
// ClientPhone selects the client; when empty the booking is for the caller.
type RoomBookingRequest struct {
	RoomID      string    `json:"room_id" validate:"required,mongodb"`
	SlotNumber  int       `json:"slot_number" validate:"required,min=1"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	PeopleCount int       `json:"people_count" validate:"required,min=1,max=1000"`
	ClientPhone string    `json:"client_phone,omitempty" validate:"omitempty,e164"`
}

type RoomBookingUpdate struct {
	SlotNumber  *int       `json:"slot_number,omitempty" validate:"omitempty,min=1"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	PeopleCount *int       `json:"people_count,omitempty" validate:"omitempty,min=1,max=1000"`
}

func (u *RoomBookingUpdate) IsEmpty() bool {
	return u.SlotNumber == nil && u.StartTime == nil && u.EndTime == nil && u.PeopleCount == nil
}

type EventBooking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	EventID   string    `json:"event_id" bson:"event_id" validate:"required,mongodb"`
	Price     int64     `json:"price" bson:"price" validate:"min=0"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled completed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// EventBookingRequest optionally names the user a worker books on behalf of.
type EventBookingRequest struct {
	UserID string `json:"user_id,omitempty" validate:"omitempty,mongodb"`
}

// BookingView is one row of the combined booking listing.
type BookingView struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	UserID      string     `json:"user_id"`
	ClientName  string     `json:"client_name,omitempty"`
	ClientPhone string     `json:"client_phone,omitempty"`
	ObjectID    string     `json:"object_id"`
	ObjectTitle string     `json:"object_title"`
	SlotNumber  int        `json:"slot_number,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	PeopleCount int        `json:"people_count,omitempty"`
	Price       int64      `json:"price"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BookingFilter narrows the privileged booking listing. Empty fields do not filter.
type BookingFilter struct {
	ClientName  string
	ClientPhone string
	ObjectTitle string
}

// BookingQuery selects active bookings from a ledger. ObjectIDs are room ids
// or event ids depending on the ledger. Empty fields do not filter.
type BookingQuery struct {
	UserID    string
	UserIDs   []string
	ObjectIDs []string
}

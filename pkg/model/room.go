package model

import "time"

const (
	RoomStatusOpen        = "open"
	RoomStatusMaintenance = "maintenance"
	RoomStatusClosed      = "closed"
)

// Room is a rentable space split into numbered slots. Each slot is booked
// independently.
type Room struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name             string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location         int       `json:"location" bson:"location" validate:"min=0"`
	OpenFrom         string    `json:"open_from" bson:"open_from" validate:"required,hhmm"`
	OpenUntil        string    `json:"open_until" bson:"open_until" validate:"required,hhmm"`
	PricePerSlotHour int64     `json:"price_per_slot_hour" bson:"price_per_slot_hour" validate:"min=0"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=open maintenance closed"`
	SlotsTotal       int       `json:"slots_total" bson:"slots_total" validate:"required,min=1,max=1000"`
	Description      string    `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

type RoomUpdate struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location         *int    `json:"location,omitempty" validate:"omitempty,min=0"`
	OpenFrom         *string `json:"open_from,omitempty" validate:"omitempty,hhmm"`
	OpenUntil        *string `json:"open_until,omitempty" validate:"omitempty,hhmm"`
	PricePerSlotHour *int64  `json:"price_per_slot_hour,omitempty" validate:"omitempty,min=0"`
	Status           *string `json:"status,omitempty" validate:"omitempty,oneof=open maintenance closed"`
	SlotsTotal       *int    `json:"slots_total,omitempty" validate:"omitempty,min=1,max=1000"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (u *RoomUpdate) Apply(room *Room) {
	if u.Name != nil {
		room.Name = *u.Name
	}
	if u.Location != nil {
		room.Location = *u.Location
	}
	if u.OpenFrom != nil {
		room.OpenFrom = *u.OpenFrom
	}
	if u.OpenUntil != nil {
		room.OpenUntil = *u.OpenUntil
	}
	if u.PricePerSlotHour != nil {
		room.PricePerSlotHour = *u.PricePerSlotHour
	}
	if u.Status != nil {
		room.Status = *u.Status
	}
	if u.SlotsTotal != nil {
		room.SlotsTotal = *u.SlotsTotal
	}
	if u.Description != nil {
		room.Description = *u.Description
	}
}

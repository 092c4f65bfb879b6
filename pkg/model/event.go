package model

import "time"

// Event is a ticketed happening. Capacity 0 means unlimited.
type Event struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=150"`
	Location    int       `json:"location" bson:"location" validate:"min=0"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"min=0,max=100000"`
	Price       int64     `json:"price" bson:"price" validate:"min=0"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type EventUpdate struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=2,max=150"`
	Location    *int       `json:"location,omitempty" validate:"omitempty,min=0"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=0,max=100000"`
	Price       *int64     `json:"price,omitempty" validate:"omitempty,min=0"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (u *EventUpdate) Apply(e *Event) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.StartTime != nil {
		e.StartTime = u.StartTime.UTC()
	}
	if u.EndTime != nil {
		e.EndTime = u.EndTime.UTC()
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
	if u.Price != nil {
		e.Price = *u.Price
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
}

package model

import "time"

type Attraction struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    int       `json:"location" bson:"location" validate:"min=0"`
	OpenFrom    string    `json:"open_from" bson:"open_from" validate:"required,hhmm"`
	OpenUntil   string    `json:"open_until" bson:"open_until" validate:"required,hhmm"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=100000"`
	Price       int64     `json:"price" bson:"price" validate:"min=0"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type AttractionUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    *int    `json:"location,omitempty" validate:"omitempty,min=0"`
	OpenFrom    *string `json:"open_from,omitempty" validate:"omitempty,hhmm"`
	OpenUntil   *string `json:"open_until,omitempty" validate:"omitempty,hhmm"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100000"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (u *AttractionUpdate) Apply(a *Attraction) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Location != nil {
		a.Location = *u.Location
	}
	if u.OpenFrom != nil {
		a.OpenFrom = *u.OpenFrom
	}
	if u.OpenUntil != nil {
		a.OpenUntil = *u.OpenUntil
	}
	if u.Capacity != nil {
		a.Capacity = *u.Capacity
	}
	if u.Price != nil {
		a.Price = *u.Price
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
}

package validator

import (
	"fmt"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"parkbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateRoomRequest(req *model.RoomBookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateRoomUpdate(update *model.RoomBookingUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *BookingValidator) ValidateEventRequest(req *model.EventBookingRequest) error {
	return validation.Struct(v.validate, req)
}

// ValidateSlot checks slot against the room's numbered slots.
func (v *BookingValidator) ValidateSlot(room *model.Room, slot int) error {
	if slot < 1 || slot > room.SlotsTotal {
		return validation.Field("slot_number", fmt.Sprintf("slot_number must be between 1 and %d", room.SlotsTotal))
	}
	return nil
}

// ValidateBookable rejects rooms that are closed or under maintenance.
func (v *BookingValidator) ValidateBookable(room *model.Room) error {
	if room.Status != model.RoomStatusOpen {
		return validation.Field("room_id", fmt.Sprintf("room is %s and cannot be booked", room.Status))
	}
	return nil
}

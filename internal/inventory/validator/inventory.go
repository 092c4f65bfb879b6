package validator

import (
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"parkbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type InventoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewInventoryValidator(log *logger.Logger) *InventoryValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize inventory validator", "error", err)
	}

	return &InventoryValidator{
		validate: v,
		logger:   log,
	}
}

func (v *InventoryValidator) ValidateRoom(room *model.Room) error {
	if err := validation.Struct(v.validate, room); err != nil {
		return err
	}
	return validateHours(room.OpenFrom, room.OpenUntil)
}

func (v *InventoryValidator) ValidateRoomUpdate(update *model.RoomUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *InventoryValidator) ValidateAttraction(a *model.Attraction) error {
	if err := validation.Struct(v.validate, a); err != nil {
		return err
	}
	return validateHours(a.OpenFrom, a.OpenUntil)
}

func (v *InventoryValidator) ValidateAttractionUpdate(update *model.AttractionUpdate) error {
	return validation.Struct(v.validate, update)
}

// HH:MM strings order the same way as the times they name.
func validateHours(from, until string) error {
	if until <= from {
		return validation.Field("open_until", "open_until must be after open_from")
	}
	return nil
}

package validator

import (
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"parkbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EventValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize event validator", "error", err)
	}

	return &EventValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a complete event, including end_time after start_time.
func (v *EventValidator) Validate(event *model.Event) error {
	return validation.Struct(v.validate, event)
}

func (v *EventValidator) ValidateUpdate(update *model.EventUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *EventValidator) ValidateBookingRequest(req *model.EventBookingRequest) error {
	return validation.Struct(v.validate, req)
}

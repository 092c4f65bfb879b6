package service

import (
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/pkg/model"
	"time"
)

// Price charges room.PricePerSlotHour for every full hour of [start, end).
// Partial hours are not billed, so 09:00-11:30 costs two hours.
func Price(room *model.Room, start, end time.Time) (int64, error) {
	if !end.After(start) {
		return 0, bookingserrors.InvalidInterval()
	}

	hours := int64(end.Sub(start) / time.Hour)
	if hours <= 0 {
		return 0, bookingserrors.InvalidDuration()
	}

	return room.PricePerSlotHour * hours, nil
}

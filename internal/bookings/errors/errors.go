// Package errors holds the booking error kinds shared by room and event
// bookings. Each kind is a sentinel; the constructors wrap it in an AppError
// carrying the response code and status, so callers match with errors.Is.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"parkbook/internal/access"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
)

const (
	CodeAccessDenied      = access.CodeAccessDenied
	CodeClientNotFound    = "CLIENT_NOT_FOUND"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeEventNotFound     = "EVENT_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeInvalidInterval   = "INVALID_INTERVAL"
	CodeInvalidDuration   = "INVALID_DURATION"
	CodeTimeConflict      = "TIME_CONFLICT"
	CodeAlreadyBooked     = "ALREADY_BOOKED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeEventSoldOut      = "EVENT_SOLD_OUT"
	CodePersistence       = "PERSISTENCE_ERROR"
	CodeSlotBusy          = "SLOT_BUSY"
)

// Repository level.
var (
	ErrNotFound = fmt.Errorf("booking %w", mongotx.ErrNotFound)

	ErrInvalidID = fmt.Errorf("%w for booking", mongotx.ErrInvalidID)

	ErrLockHeld = errors.New("slot lock is held by another request")
)

// Booking outcomes.
var (
	ErrAccessDenied = access.ErrAccessDenied

	ErrClientNotFound = errors.New("client not found")

	ErrRoomNotFound = errors.New("room not found")

	ErrEventNotFound = errors.New("event not found")

	ErrUserNotFound = errors.New("user not found")

	ErrInvalidInterval = errors.New("end time must be after start time")

	ErrInvalidDuration = errors.New("booking must last at least one hour")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrAlreadyBooked = errors.New("user already booked this event")

	ErrInvalidTransition = errors.New("booking status cannot change")

	ErrEventSoldOut = errors.New("event is sold out")

	ErrSlotBusy = errors.New("slot is being booked by another request")

	ErrPersistence = errors.New("booking could not be saved")
)

func ClientNotFound() *apperrors.AppError {
	return apperrors.Wrap(ErrClientNotFound, CodeClientNotFound, "Client not found", http.StatusNotFound)
}

func RoomNotFound(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrRoomNotFound, CodeRoomNotFound, "Room not found", http.StatusNotFound).
		WithDetails(map[string]any{"id": id})
}

func EventNotFound(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrEventNotFound, CodeEventNotFound, "Event not found", http.StatusNotFound).
		WithDetails(map[string]any{"id": id})
}

func UserNotFound(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrUserNotFound, CodeUserNotFound, "User not found", http.StatusNotFound).
		WithDetails(map[string]any{"id": id})
}

func InvalidInterval() *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidInterval, CodeInvalidInterval, "End time must be after start time", http.StatusUnprocessableEntity)
}

func InvalidDuration() *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidDuration, CodeInvalidDuration, "Booking must last at least one full hour", http.StatusUnprocessableEntity)
}

func TimeConflict(start, end string) *apperrors.AppError {
	return apperrors.Wrap(ErrTimeConflict, CodeTimeConflict,
		fmt.Sprintf("Slot is already booked between %s and %s", start, end), http.StatusConflict)
}

func AlreadyBooked() *apperrors.AppError {
	return apperrors.Wrap(ErrAlreadyBooked, CodeAlreadyBooked, "You have already booked this event", http.StatusConflict)
}

// InvalidTransition reports that a booking in status cannot be acted on, for
// example a cancelled booking being completed.
func InvalidTransition(status, action string) *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidTransition, CodeInvalidTransition,
		fmt.Sprintf("A %s booking cannot be %s", status, action), http.StatusConflict).
		WithDetails(map[string]any{"status": status, "action": action})
}

func EventSoldOut() *apperrors.AppError {
	return apperrors.Wrap(ErrEventSoldOut, CodeEventSoldOut, "Event is sold out", http.StatusConflict)
}

func SlotBusy() *apperrors.AppError {
	return apperrors.Wrap(ErrSlotBusy, CodeSlotBusy,
		"This slot is currently being booked by another request. Please try again.", http.StatusConflict)
}

// Persistence hides cause from the response; it stays reachable for logging.
func Persistence(cause error) *apperrors.AppError {
	return apperrors.Wrap(errors.Join(ErrPersistence, cause), CodePersistence,
		"Booking could not be saved, please try again later", http.StatusInternalServerError)
}

func BookingNotFound(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrNotFound, apperrors.CodeNotFound, "Booking not found", http.StatusNotFound).
		WithDetails(map[string]any{"resource": "Booking", "id": id})
}

func InvalidBookingID() *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidID, apperrors.CodeInvalidInput, "Invalid booking ID format", http.StatusBadRequest)
}

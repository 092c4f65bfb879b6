package service

import (
	"context"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/repository"
	"parkbook/pkg/model"
	"time"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Intervals that only touch at an endpoint do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

type ConflictChecker struct {
	repo repository.RoomBookingRepository
}

func NewConflictChecker(repo repository.RoomBookingRepository) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// FindConflict returns the first active booking of the slot that overlaps
// [start, end), or nil. excludeID skips the booking being edited.
func (c *ConflictChecker) FindConflict(
	ctx context.Context,
	roomID string,
	slot int,
	start, end time.Time,
	excludeID string,
) (*model.RoomBooking, error) {
	if !end.After(start) {
		return nil, bookingserrors.InvalidInterval()
	}

	candidates, err := c.repo.FindOverlapping(ctx, roomID, slot, start, end, excludeID)
	if err != nil {
		return nil, err
	}

	// The query already filters, this keeps the rule in one readable place.
	for _, b := range candidates {
		if b.ID == excludeID || model.IsTerminalStatus(b.Status) {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return b, nil
		}
	}
	return nil, nil
}

func (c *ConflictChecker) HasConflict(
	ctx context.Context,
	roomID string,
	slot int,
	start, end time.Time,
	excludeID string,
) (bool, error) {
	b, err := c.FindConflict(ctx, roomID, slot, start, end, excludeID)
	return b != nil, err
}

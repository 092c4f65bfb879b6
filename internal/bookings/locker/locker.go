// Package locker serializes bookings that touch the same slot, on top of the
// advisory lock documents stored by the repository package.
package locker

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/repository"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/logger"
	"slices"
	"time"
)

const DefaultBackoff = 25 * time.Millisecond

func RoomSlotKey(roomID string, slot int) string {
	return fmt.Sprintf("room_slot_lock_%s_%d", roomID, slot)
}

func EventUserKey(eventID, userID string) string {
	return fmt.Sprintf("event_booking_lock_%s_%s", eventID, userID)
}

// EventKey covers every booking of an event. Used when seats are limited.
func EventKey(eventID string) string {
	return fmt.Sprintf("event_booking_lock_%s", eventID)
}

type Locker struct {
	store   repository.SlotLockRepository
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	log     *logger.Logger
}

func New(store repository.SlotLockRepository, ttl, wait time.Duration, log *logger.Logger) *Locker {
	return &Locker{
		store:   store,
		ttl:     ttl,
		wait:    wait,
		backoff: DefaultBackoff,
		log:     log,
	}
}

// Lock acquires every key, retrying held ones until the wait timeout elapses.
// Keys are taken in sorted order so two callers locking overlapping sets
// cannot deadlock. The returned func releases everything and is safe to defer.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	type held struct{ key, owner string }
	acquired := make([]held, 0, len(keys))

	release := func() {
		relCtx := context.WithoutCancel(ctx)
		for i := len(acquired) - 1; i >= 0; i-- {
			h := acquired[i]
			if err := l.store.Release(relCtx, h.key, h.owner); err != nil {
				l.log.Warn("Failed to release slot lock", "key", h.key, "error", err)
			}
		}
	}

	deadline := time.Now().Add(l.wait)
	for _, key := range keys {
		owner, err := l.acquire(ctx, key, deadline)
		if err != nil {
			release()
			return nil, err
		}
		acquired = append(acquired, held{key: key, owner: owner})
	}

	return release, nil
}

func (l *Locker) acquire(ctx context.Context, key string, deadline time.Time) (string, error) {
	for {
		owner, err := l.store.TryAcquire(ctx, key, l.ttl)
		if err == nil {
			return owner, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			l.log.Error("Failed to acquire slot lock", "key", key, "error", err)
			return "", apperrors.Internal("Failed to acquire slot lock", err)
		}

		if !time.Now().Add(l.backoff).Before(deadline) {
			l.log.Warn("Slot lock wait timed out", "key", key)
			return "", bookingserrors.SlotBusy()
		}

		timer := time.NewTimer(l.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", bookingserrors.SlotBusy()
		case <-timer.C:
		}
	}
}

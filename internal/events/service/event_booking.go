package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/locker"
	"parkbook/internal/events/repository"
	"parkbook/internal/events/validator"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"parkbook/pkg/validation"
	"time"
)

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type Locker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

type EventBookingService interface {
	Book(ctx context.Context, caller access.Identity, eventID string, req *model.EventBookingRequest) (*model.EventBooking, error)
	Cancel(ctx context.Context, caller access.Identity, id string) (*model.EventBooking, error)
	Complete(ctx context.Context, caller access.Identity, id string) (*model.EventBooking, error)
}

type eventBookingService struct {
	repo      repository.EventBookingRepository
	events    repository.EventRepository
	users     UserLookup
	locker    Locker
	publisher bookingevents.Publisher
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventBookingService(
	repo repository.EventBookingRepository,
	events repository.EventRepository,
	users UserLookup,
	locker Locker,
	publisher bookingevents.Publisher,
	validator *validator.EventValidator,
	cfg *config.Config,
) EventBookingService {
	return &eventBookingService{
		repo:      repo,
		events:    events,
		users:     users,
		locker:    locker,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Book reserves a ticket for the caller, or for req.UserID when a worker books
// on someone's behalf. The price is copied from the event as it is now.
func (s *eventBookingService) Book(ctx context.Context, caller access.Identity, eventID string, req *model.EventBookingRequest) (*model.EventBooking, error) {
	if caller.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil {
		req = &model.EventBookingRequest{}
	}
	if err := s.validator.ValidateBookingRequest(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	userID := caller.UserID
	if req.UserID != "" && req.UserID != caller.UserID {
		if err := access.RequireAdminOrWorker(caller); err != nil {
			s.cfg.Log.Warn("Event booking on behalf denied", "user_id", caller.UserID)
			return nil, err
		}
		if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
			if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
				return nil, bookingserrors.UserNotFound(req.UserID)
			}
			s.cfg.Log.Error("Failed to look up user", "user_id", req.UserID, "error", err)
			return nil, apperrors.Internal("Failed to look up user", err)
		}
		userID = req.UserID
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
			return nil, bookingserrors.EventNotFound(eventID)
		}
		s.cfg.Log.Error("Failed to look up event", "event_id", eventID, "error", err)
		return nil, apperrors.Internal("Failed to look up event", err)
	}

	lockKey := locker.EventUserKey(event.ID, userID)
	if event.Capacity > 0 {
		lockKey = locker.EventKey(event.ID)
	}
	release, err := s.locker.Lock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	booking := &model.EventBooking{
		UserID:  userID,
		EventID: event.ID,
		Price:   event.Price,
		Status:  model.BookingStatusConfirmed,
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		held, err := s.repo.HasHeld(txCtx, event.ID, userID)
		if err != nil {
			return bookingserrors.Persistence(err)
		}
		if held {
			return bookingserrors.AlreadyBooked()
		}

		if event.Capacity > 0 {
			taken, err := s.repo.CountHeld(txCtx, event.ID)
			if err != nil {
				return bookingserrors.Persistence(err)
			}
			if taken >= int64(event.Capacity) {
				return bookingserrors.EventSoldOut()
			}
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			return bookingserrors.Persistence(err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = bookingserrors.Persistence(err)
		}
		if errors.Is(err, bookingserrors.ErrPersistence) {
			s.cfg.Log.Error("Failed to book event", "event_id", event.ID, "user_id", userID, "error", err)
		} else {
			s.cfg.Log.Warn("Event booking rejected", "event_id", event.ID, "user_id", userID, "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Event booked",
		"id", booking.ID,
		"event_id", booking.EventID,
		"user_id", booking.UserID,
		"booked_by", caller.UserID,
		"price", booking.Price,
	)
	s.publish(ctx, caller, bookingevents.EventBookingCreated, booking)
	return booking, nil
}

// Cancel is open to the booking's owner as well as staff.
func (s *eventBookingService) Cancel(ctx context.Context, caller access.Identity, id string) (*model.EventBooking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdminOrWorker(caller, booking.UserID); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, booking, model.BookingStatusCancelled, bookingevents.EventBookingCancelled)
}

func (s *eventBookingService) Complete(ctx context.Context, caller access.Identity, id string) (*model.EventBooking, error) {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return nil, err
	}
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, booking, model.BookingStatusCompleted, bookingevents.EventBookingCompleted)
}

func (s *eventBookingService) transition(ctx context.Context, caller access.Identity, booking *model.EventBooking, to, kind string) (*model.EventBooking, error) {
	if model.IsTerminalStatus(booking.Status) {
		return nil, bookingserrors.InvalidTransition(booking.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingStatusConfirmed, to); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, bookingserrors.InvalidTransition("non-confirmed", to)
		}
		s.cfg.Log.Error("Failed to change event booking status", "id", booking.ID, "to", to, "error", err)
		return nil, bookingserrors.Persistence(err)
	}

	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()

	s.cfg.Log.Info("Event booking status changed", "id", booking.ID, "status", to, "by", caller.UserID)
	s.publish(ctx, caller, kind, booking)
	return booking, nil
}

func (s *eventBookingService) findBooking(ctx context.Context, id string) (*model.EventBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, bookingserrors.BookingNotFound(id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, bookingserrors.InvalidBookingID()
		}
		s.cfg.Log.Error("Failed to retrieve event booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *eventBookingService) publish(ctx context.Context, caller access.Identity, kind string, b *model.EventBooking) {
	s.publisher.Publish(ctx, bookingevents.Event{
		BookingID:  b.ID,
		Kind:       kind,
		UserID:     b.UserID,
		ResourceID: b.EventID,
		Status:     b.Status,
		Price:      b.Price,
		ActorID:    caller.UserID,
		At:         b.UpdatedAt,
	})
}

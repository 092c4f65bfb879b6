package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/locker"
	"parkbook/internal/bookings/repository"
	"parkbook/internal/bookings/validator"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"parkbook/pkg/sanitizer"
	"parkbook/pkg/validation"
	"time"
)

// RoomLookup resolves rooms. Missing rooms are reported with an error
// wrapping mongotx.ErrNotFound.
type RoomLookup interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// UserLookup resolves clients. Missing users are reported with an error
// wrapping mongotx.ErrNotFound.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
}

type Locker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

type RoomBookingService interface {
	Create(ctx context.Context, caller access.Identity, req *model.RoomBookingRequest) (*model.RoomBooking, error)
	Update(ctx context.Context, caller access.Identity, id string, update *model.RoomBookingUpdate) (*model.RoomBooking, error)
	Cancel(ctx context.Context, caller access.Identity, id string) (*model.RoomBooking, error)
	Complete(ctx context.Context, caller access.Identity, id string) (*model.RoomBooking, error)
}

type roomBookingService struct {
	repo      repository.RoomBookingRepository
	rooms     RoomLookup
	users     UserLookup
	locker    Locker
	checker   *ConflictChecker
	publisher bookingevents.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewRoomBookingService(
	repo repository.RoomBookingRepository,
	rooms RoomLookup,
	users UserLookup,
	locker Locker,
	publisher bookingevents.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) RoomBookingService {
	return &roomBookingService{
		repo:      repo,
		rooms:     rooms,
		users:     users,
		locker:    locker,
		checker:   NewConflictChecker(repo),
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomBookingService) Create(ctx context.Context, caller access.Identity, req *model.RoomBookingRequest) (*model.RoomBooking, error) {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		s.cfg.Log.Warn("Room booking denied", "user_id", caller.UserID)
		return nil, err
	}

	if err := s.sanitizeRequest(req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRoomRequest(req); err != nil {
		s.cfg.Log.Warn("Room booking validation failed", "error", err)
		return nil, validation.ToAppError(err)
	}

	client, err := s.resolveClient(ctx, caller, req.ClientPhone)
	if err != nil {
		return nil, err
	}

	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if !end.After(start) {
		return nil, bookingserrors.InvalidInterval()
	}
	if err := s.validator.ValidateSlot(room, req.SlotNumber); err != nil {
		return nil, validation.ToAppError(err)
	}
	if err := s.validator.ValidateBookable(room); err != nil {
		return nil, validation.ToAppError(err)
	}

	price, err := Price(room, start, end)
	if err != nil {
		return nil, err
	}

	booking := &model.RoomBooking{
		UserID:      client.ID,
		RoomID:      room.ID,
		SlotNumber:  req.SlotNumber,
		StartTime:   start,
		EndTime:     end,
		Price:       price,
		PeopleCount: req.PeopleCount,
		Status:      model.BookingStatusConfirmed,
		CreatedBy:   caller.UserID,
	}

	release, err := s.locker.Lock(ctx, locker.RoomSlotKey(room.ID, req.SlotNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureFree(txCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return bookingserrors.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError("create", err)
	}

	s.cfg.Log.Info("Room booking created",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"slot_number", booking.SlotNumber,
		"user_id", booking.UserID,
		"created_by", booking.CreatedBy,
		"price", booking.Price,
	)
	s.publish(ctx, caller, bookingevents.RoomBookingCreated, booking)
	return booking, nil
}

func (s *roomBookingService) Update(ctx context.Context, caller access.Identity, id string, update *model.RoomBookingUpdate) (*model.RoomBooking, error) {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	if err := s.validator.ValidateRoomUpdate(update); err != nil {
		s.cfg.Log.Warn("Room booking update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	existing, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.IsTerminalStatus(existing.Status) {
		return nil, bookingserrors.InvalidTransition(existing.Status, "updated")
	}

	merged := *existing
	if update.SlotNumber != nil {
		merged.SlotNumber = *update.SlotNumber
	}
	if update.StartTime != nil {
		merged.StartTime = update.StartTime.UTC()
	}
	if update.EndTime != nil {
		merged.EndTime = update.EndTime.UTC()
	}
	if update.PeopleCount != nil {
		merged.PeopleCount = *update.PeopleCount
	}

	if !merged.EndTime.After(merged.StartTime) {
		return nil, bookingserrors.InvalidInterval()
	}

	room, err := s.findRoom(ctx, existing.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSlot(room, merged.SlotNumber); err != nil {
		return nil, validation.ToAppError(err)
	}
	if merged.Price, err = Price(room, merged.StartTime, merged.EndTime); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx,
		locker.RoomSlotKey(room.ID, existing.SlotNumber),
		locker.RoomSlotKey(room.ID, merged.SlotNumber),
	)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureFree(txCtx, &merged, id); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, id, &merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return bookingserrors.InvalidTransition("non-confirmed", "updated")
			}
			return bookingserrors.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError("update", err)
	}

	s.cfg.Log.Info("Room booking updated", "id", id, "slot_number", merged.SlotNumber, "price", merged.Price)
	s.publish(ctx, caller, bookingevents.RoomBookingUpdated, &merged)
	return &merged, nil
}

func (s *roomBookingService) Cancel(ctx context.Context, caller access.Identity, id string) (*model.RoomBooking, error) {
	return s.transition(ctx, caller, id, model.BookingStatusCancelled, bookingevents.RoomBookingCancelled)
}

func (s *roomBookingService) Complete(ctx context.Context, caller access.Identity, id string) (*model.RoomBooking, error) {
	return s.transition(ctx, caller, id, model.BookingStatusCompleted, bookingevents.RoomBookingCompleted)
}

func (s *roomBookingService) transition(ctx context.Context, caller access.Identity, id, to, kind string) (*model.RoomBooking, error) {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return nil, err
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.IsTerminalStatus(booking.Status) {
		return nil, bookingserrors.InvalidTransition(booking.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, model.BookingStatusConfirmed, to); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			// Someone else moved it first.
			return nil, bookingserrors.InvalidTransition("non-confirmed", to)
		}
		s.cfg.Log.Error("Failed to change room booking status", "id", id, "to", to, "error", err)
		return nil, bookingserrors.Persistence(err)
	}

	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()

	s.cfg.Log.Info("Room booking status changed", "id", id, "status", to, "by", caller.UserID)
	s.publish(ctx, caller, kind, booking)
	return booking, nil
}

// --- Helpers ---

func (s *roomBookingService) sanitizeRequest(req *model.RoomBookingRequest) error {
	if req.ClientPhone == "" {
		return nil
	}
	phone := sanitizer.NormalizePhone(req.ClientPhone)
	if phone == "" {
		return validation.ToAppError(validation.Field("client_phone", "client_phone is not a valid phone number"))
	}
	req.ClientPhone = phone
	return nil
}

// resolveClient picks the user the booking is for: the owner of phone when
// given, otherwise the caller.
func (s *roomBookingService) resolveClient(ctx context.Context, caller access.Identity, phone string) (*model.User, error) {
	var (
		client *model.User
		err    error
	)
	if phone != "" {
		client, err = s.users.FindByPhone(ctx, phone)
	} else {
		client, err = s.users.FindByID(ctx, caller.UserID)
	}

	if err != nil {
		if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
			s.cfg.Log.Warn("Room booking client not found", "by_phone", phone != "")
			return nil, bookingserrors.ClientNotFound()
		}
		s.cfg.Log.Error("Failed to look up client", "error", err)
		return nil, apperrors.Internal("Failed to look up client", err)
	}
	return client, nil
}

func (s *roomBookingService) findRoom(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
			return nil, bookingserrors.RoomNotFound(id)
		}
		s.cfg.Log.Error("Failed to look up room", "room_id", id, "error", err)
		return nil, apperrors.Internal("Failed to look up room", err)
	}
	return room, nil
}

func (s *roomBookingService) findBooking(ctx context.Context, id string) (*model.RoomBooking, error) {
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
		s.cfg.Log.Error("Failed to retrieve room booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *roomBookingService) ensureFree(ctx context.Context, b *model.RoomBooking, excludeID string) error {
	existing, err := s.checker.FindConflict(ctx, b.RoomID, b.SlotNumber, b.StartTime, b.EndTime, excludeID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return bookingserrors.Persistence(err)
	}
	if existing != nil {
		return bookingserrors.TimeConflict(
			existing.StartTime.Format(time.RFC3339),
			existing.EndTime.Format(time.RFC3339),
		)
	}
	return nil
}

// txError keeps AppErrors raised inside the transaction and turns driver
// failures (commit, session) into a persistence error.
func (s *roomBookingService) txError(op string, err error) error {
	if errors.Is(err, bookingserrors.ErrPersistence) || !apperrors.IsAppError(err) {
		s.cfg.Log.Error("Room booking transaction failed", "operation", op, "error", err)
	} else {
		s.cfg.Log.Warn("Room booking rejected", "operation", op, "error", err)
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return bookingserrors.Persistence(err)
}

func (s *roomBookingService) publish(ctx context.Context, caller access.Identity, kind string, b *model.RoomBooking) {
	s.publisher.Publish(ctx, bookingevents.Event{
		BookingID:  b.ID,
		Kind:       kind,
		UserID:     b.UserID,
		ResourceID: b.RoomID,
		Status:     b.Status,
		Price:      b.Price,
		ActorID:    caller.UserID,
		At:         b.UpdatedAt,
	})
}

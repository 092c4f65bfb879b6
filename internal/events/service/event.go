package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	bookingserrors "parkbook/internal/bookings/errors"
	eventserrors "parkbook/internal/events/errors"
	"parkbook/internal/events/repository"
	"parkbook/internal/events/validator"
	"parkbook/pkg/config"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"parkbook/pkg/sanitizer"
	"parkbook/pkg/validation"
	"sync"
)

type EventService interface {
	Create(ctx context.Context, caller access.Identity, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Event, int64, error)
	Update(ctx context.Context, caller access.Identity, id string, update *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
}

type eventService struct {
	repo      repository.EventRepository
	bookings  repository.EventBookingRepository
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventService(
	repo repository.EventRepository,
	bookings repository.EventBookingRepository,
	validator *validator.EventValidator,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *eventService) Create(ctx context.Context, caller access.Identity, event *model.Event) error {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return err
	}

	s.sanitize(event)
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "error", err)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create event", "error", err)
		return apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created successfully",
		"id", event.ID,
		"title", event.Title,
		"start_time", event.StartTime,
		"created_by", caller.UserID,
	)
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}
	return event, nil
}

func (s *eventService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Event, int64, error) {
	filter.Title = sanitizer.NormalizeSearch(filter.Title)

	var count int64
	var events []*model.Event
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.FindAll(ctx, filter, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Error("Failed to count events", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count events", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list events", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve events", errFind)
	}

	return events, count, nil
}

func (s *eventService) Update(ctx context.Context, caller access.Identity, id string, update *model.EventUpdate) (*model.Event, error) {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Event update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(event)
	s.sanitize(event)
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, id, event); err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, bookingserrors.EventNotFound(id)
		}
		s.cfg.Log.Error("Failed to update event", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update event", err)
	}

	s.cfg.Log.Info("Event updated successfully", "id", id)
	return event, nil
}

// Delete removes the event together with all of its bookings.
func (s *eventService) Delete(ctx context.Context, caller access.Identity, id string) error {
	if err := access.RequireAdminOrWorker(caller); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	var removed int64
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return s.mapFindError(id, err)
		}
		n, err := s.bookings.DeleteByEvent(txCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to delete event bookings", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to delete event", "id", id, "error", err)
			return apperrors.Internal("Failed to delete event", err)
		}
		return err
	}

	s.cfg.Log.Info("Event deleted successfully", "id", id, "bookings_removed", removed)
	return nil
}

// --- Helpers ---

func (s *eventService) sanitize(e *model.Event) {
	e.Title = sanitizer.TrimAndNormalize(e.Title)
	e.Description = sanitizer.NormalizeText(e.Description)
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
}

func (s *eventService) mapFindError(id string, err error) error {
	if errors.Is(err, eventserrors.ErrNotFound) || errors.Is(err, eventserrors.ErrInvalidID) {
		return bookingserrors.EventNotFound(id)
	}
	s.cfg.Log.Error("Failed to retrieve event", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve event", err)
}

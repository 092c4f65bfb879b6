package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/inventory/repository"
	"parkbook/internal/inventory/validator"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"parkbook/pkg/sanitizer"
	"parkbook/pkg/validation"
	"sync"
)

type RoomService interface {
	Create(ctx context.Context, caller access.Identity, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, caller access.Identity, id string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.InventoryValidator
	cfg       *config.Config
}

func NewRoomService(repo repository.RoomRepository, validator *validator.InventoryValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, caller access.Identity, room *model.Room) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}

	if room.Status == "" {
		room.Status = model.RoomStatusOpen
	}
	room.Name = sanitizer.TrimAndNormalize(room.Name)
	room.Description = sanitizer.NormalizeText(room.Description)
	if err := s.validator.ValidateRoom(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "name", room.Name, "slots_total", room.SlotsTotal)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "retrieve", err)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Room, int64, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, filter, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Error("Failed to count rooms", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count rooms", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve rooms", errFind)
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, caller access.Identity, id string, update *model.RoomUpdate) (*model.Room, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRoomUpdate(update); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(room)
	room.Name = sanitizer.TrimAndNormalize(room.Name)
	room.Description = sanitizer.NormalizeText(room.Description)
	if err := s.validator.ValidateRoom(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, id, room); err != nil {
		return nil, s.mapError(id, "update", err)
	}

	s.cfg.Log.Info("Room updated successfully", "id", id)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, caller access.Identity, id string) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(id, "delete", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) mapError(id, op string, err error) error {
	if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
		return bookingserrors.RoomNotFound(id)
	}
	s.cfg.Log.Error("Failed to "+op+" room", "id", id, "error", err)
	return apperrors.Internal("Failed to "+op+" room", err)
}

// normalizeFilter applies the listing defaults and rejects unknown sort orders.
func normalizeFilter(f repository.Filter) (repository.Filter, error) {
	f.Search = sanitizer.NormalizeSearch(f.Search)
	if f.PriceFrom < 0 {
		f.PriceFrom = repository.DefaultPriceFrom
	}
	if f.PriceTo <= 0 {
		f.PriceTo = repository.DefaultPriceTo
	}
	if f.PriceFrom > f.PriceTo {
		return f, apperrors.InvalidInput("price_from cannot be greater than price_to")
	}
	if !repository.ValidSort(f.Sort) {
		return f, apperrors.InvalidInput("sort must be one of: name_asc, name_desc, price_asc, price_desc")
	}
	if f.Sort == "" {
		f.Sort = repository.SortNameAsc
	}
	return f, nil
}

package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
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

type AttractionService interface {
	Create(ctx context.Context, caller access.Identity, a *model.Attraction) error
	GetByID(ctx context.Context, id string) (*model.Attraction, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Attraction, int64, error)
	Update(ctx context.Context, caller access.Identity, id string, update *model.AttractionUpdate) (*model.Attraction, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
}

type attractionService struct {
	repo      repository.AttractionRepository
	validator *validator.InventoryValidator
	cfg       *config.Config
}

func NewAttractionService(repo repository.AttractionRepository, validator *validator.InventoryValidator, cfg *config.Config) AttractionService {
	return &attractionService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *attractionService) Create(ctx context.Context, caller access.Identity, a *model.Attraction) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}

	a.Name = sanitizer.TrimAndNormalize(a.Name)
	a.Description = sanitizer.NormalizeText(a.Description)
	if err := s.validator.ValidateAttraction(a); err != nil {
		s.cfg.Log.Warn("Attraction validation failed", "error", err)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.cfg.Log.Error("Failed to create attraction", "error", err)
		return apperrors.Internal("Failed to create attraction", err)
	}

	s.cfg.Log.Info("Attraction created successfully", "id", a.ID, "name", a.Name)
	return nil
}

func (s *attractionService) GetByID(ctx context.Context, id string) (*model.Attraction, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Attraction ID cannot be empty")
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "retrieve", err)
	}
	return a, nil
}

func (s *attractionService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Attraction, int64, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var attractions []*model.Attraction
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		attractions, errFind = s.repo.FindAll(ctx, filter, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Error("Failed to count attractions", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count attractions", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list attractions", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve attractions", errFind)
	}

	return attractions, count, nil
}

func (s *attractionService) Update(ctx context.Context, caller access.Identity, id string, update *model.AttractionUpdate) (*model.Attraction, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAttractionUpdate(update); err != nil {
		s.cfg.Log.Warn("Attraction update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(a)
	a.Name = sanitizer.TrimAndNormalize(a.Name)
	a.Description = sanitizer.NormalizeText(a.Description)
	if err := s.validator.ValidateAttraction(a); err != nil {
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, id, a); err != nil {
		return nil, s.mapError(id, "update", err)
	}

	s.cfg.Log.Info("Attraction updated successfully", "id", id)
	return a, nil
}

func (s *attractionService) Delete(ctx context.Context, caller access.Identity, id string) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Attraction ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(id, "delete", err)
	}

	s.cfg.Log.Info("Attraction deleted successfully", "id", id)
	return nil
}

func (s *attractionService) mapError(id, op string, err error) error {
	if errors.Is(err, mongotx.ErrNotFound) || errors.Is(err, mongotx.ErrInvalidID) {
		return apperrors.NotFoundWithID("Attraction", id)
	}
	s.cfg.Log.Error("Failed to "+op+" attraction", "id", id, "error", err)
	return apperrors.Internal("Failed to "+op+" attraction", err)
}

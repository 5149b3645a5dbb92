package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/tour/repository"
	tourerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type TourService interface {
	Create(ctx context.Context, guideID string, tour *model.Tour) error
	GetByID(ctx context.Context, id string) (*model.Tour, error)
	GetAll(ctx context.Context, filter repository.TourFilter, limit, offset int) ([]*model.Tour, int64, error)
	GetByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Tour, int64, error)
	Update(ctx context.Context, guideID, id string, updates *model.TourUpdate) error
	Delete(ctx context.Context, guideID string, isAdmin bool, id string) error
}

type tourService struct {
	repo     repository.TourRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewTourService(repo repository.TourRepository, cfg *config.Config) TourService {
	return &tourService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *tourService) Create(ctx context.Context, guideID string, tour *model.Tour) error {
	tour.GuideID = guideID
	tour.IsActive = true
	s.sanitize(tour)

	if err := s.validate.Struct(tour); err != nil {
		s.cfg.Log.Warn("Tour validation failed", "guide_id", guideID, "error", err)
		return apperrors.Validation("Tour validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, tour); err != nil {
		s.cfg.Log.Error("Failed to create tour", "guide_id", guideID, "error", err)
		return apperrors.Internal("Failed to create tour", err)
	}

	s.cfg.Log.Info("Tour created successfully",
		"id", tour.ID,
		"guide_id", guideID,
		"title", tour.Title,
		"city", tour.City,
	)
	return nil
}

func (s *tourService) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tour ID cannot be empty")
	}

	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tourerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tour", id)
		}
		if errors.Is(err, tourerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid tour ID format")
		}
		s.cfg.Log.Error("Failed to get tour by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve tour", err)
	}
	return tour, nil
}

func (s *tourService) GetAll(ctx context.Context, filter repository.TourFilter, limit, offset int) ([]*model.Tour, int64, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var tours []*model.Tour
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count tours", "error", err)
			errCount = apperrors.Internal("Failed to count tours", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		tours, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list tours", "error", err)
			errFind = apperrors.Internal("Failed to retrieve tours", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return tours, count, nil
}

func (s *tourService) GetByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Tour, int64, error) {
	if guideID == "" {
		return nil, 0, apperrors.InvalidInput("Guide ID cannot be empty")
	}
	return s.GetAll(ctx, repository.TourFilter{GuideID: guideID}, limit, offset)
}

func (s *tourService) Update(ctx context.Context, guideID, id string, updates *model.TourUpdate) error {
	if err := s.validate.Struct(updates); err != nil {
		return apperrors.Validation("Tour validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.GuideID != guideID {
		return apperrors.Forbidden("You can only modify your own tours")
	}

	fields := bson.M{}
	if updates.Title != "" {
		fields["title"] = strings.TrimSpace(updates.Title)
	}
	if updates.Description != "" {
		fields["description"] = strings.TrimSpace(updates.Description)
	}
	if updates.City != "" {
		fields["city"] = strings.TrimSpace(updates.City)
	}
	if updates.Category != "" {
		fields["category"] = strings.TrimSpace(updates.Category)
	}
	if updates.PricePerPerson != nil {
		fields["price_per_person"] = *updates.PricePerPerson
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
	}
	if len(fields) == 0 {
		return apperrors.InvalidInput("No fields to update")
	}

	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		s.cfg.Log.Error("Failed to update tour", "id", id, "error", err)
		return apperrors.Internal("Failed to update tour", err)
	}

	s.cfg.Log.Info("Tour updated successfully", "id", id, "guide_id", guideID)
	return nil
}

func (s *tourService) Delete(ctx context.Context, guideID string, isAdmin bool, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && existing.GuideID != guideID {
		return apperrors.Forbidden("You can only delete your own tours")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, tourerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Tour", id)
		}
		s.cfg.Log.Error("Failed to delete tour", "id", id, "error", err)
		return apperrors.Internal("Failed to delete tour", err)
	}

	s.cfg.Log.Info("Tour deleted successfully", "id", id, "guide_id", existing.GuideID)
	return nil
}

func (s *tourService) sanitize(tour *model.Tour) {
	tour.Title = strings.TrimSpace(tour.Title)
	tour.Description = strings.TrimSpace(tour.Description)
	tour.City = strings.TrimSpace(tour.City)
	tour.Category = strings.TrimSpace(tour.Category)
}

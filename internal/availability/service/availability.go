package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	availabilityerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/timeslot"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/validator"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type AvailabilityService interface {
	Create(ctx context.Context, guideID string, av *model.Availability) error
	GetByID(ctx context.Context, id string) (*model.Availability, error)
	GetByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, int64, error)
	BrowseOpen(ctx context.Context, limit, offset int) ([]*model.Availability, int64, error)
	CheckSlot(ctx context.Context, id string, guests int) (*model.SlotCheck, error)
	Update(ctx context.Context, guideID, id string, updates *model.AvailabilityUpdate) error
	Delete(ctx context.Context, guideID, id string) error

	// Reserve and Release are called by the booking flow, never by handlers.
	Reserve(ctx context.Context, availabilityID, tourID string, guests int) error
	Release(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error

	Cleanup(ctx context.Context) (int64, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.AvailabilityValidator
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *availabilityService) Create(ctx context.Context, guideID string, av *model.Availability) error {
	av.GuideID = guideID
	if err := s.normalize(av); err != nil {
		return err
	}

	if err := s.validator.Validate(av); err != nil {
		s.cfg.Log.Warn("Availability validation failed",
			"guide_id", guideID,
			"date", av.SpecificDate,
			"error", err,
		)
		return apperrors.Validation("Availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	av.Booking = model.SlotBooking{MaxGuests: av.MaxGroupSize}
	av.IsAvailable = true

	// Serialize slot creation per guide-day so the overlap scan cannot
	// race with a concurrent create.
	lockID, err := s.acquireDayLock(ctx, guideID, av.SpecificDate)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release day lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	existing, err := s.repo.FindByGuideAndDate(ctx, guideID, av.SpecificDate)
	if err != nil {
		return apperrors.Internal("Failed to check for overlapping slots", err)
	}
	if err := s.checkOverlap(av, existing, ""); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, av); err != nil {
		s.cfg.Log.Error("Failed to create availability",
			"guide_id", guideID,
			"date", av.SpecificDate,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability", err)
	}

	s.cfg.Log.Info("Availability created successfully",
		"id", av.ID,
		"guide_id", guideID,
		"date", av.SpecificDate,
		"start_time", av.StartTime,
	)
	return nil
}

func (s *availabilityService) GetByID(ctx context.Context, id string) (*model.Availability, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability ID cannot be empty")
	}

	av, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid availability ID format")
		}
		s.cfg.Log.Error("Failed to get availability by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}
	return av, nil
}

func (s *availabilityService) GetByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, int64, error) {
	if guideID == "" {
		return nil, 0, apperrors.InvalidInput("Guide ID cannot be empty")
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var availabilities []*model.Availability
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByGuide(sharedCtx, guideID)
		if err != nil {
			s.cfg.Log.Error("Failed to count availabilities", "guide_id", guideID, "error", err)
			errCount = apperrors.Internal("Failed to count availabilities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		availabilities, err = s.repo.FindByGuide(sharedCtx, guideID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list availabilities", "guide_id", guideID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve availabilities", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return availabilities, count, nil
}

func (s *availabilityService) BrowseOpen(ctx context.Context, limit, offset int) ([]*model.Availability, int64, error) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, s.cfg.AvailabilityHorizonDays+1)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var availabilities []*model.Availability
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountOpenInWindow(sharedCtx, from, to)
		if err != nil {
			s.cfg.Log.Error("Failed to count open availabilities", "error", err)
			errCount = apperrors.Internal("Failed to count availabilities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		availabilities, err = s.repo.FindOpenInWindow(sharedCtx, from, to, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to browse open availabilities", "error", err)
			errFind = apperrors.Internal("Failed to retrieve availabilities", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return availabilities, count, nil
}

func (s *availabilityService) CheckSlot(ctx context.Context, id string, guests int) (*model.SlotCheck, error) {
	if guests < 1 {
		return nil, apperrors.InvalidInput("Guest count must be at least 1")
	}

	av, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	check := &model.SlotCheck{
		CurrentGuests: av.Booking.Count,
		MaxGuests:     av.Booking.MaxGuests,
	}

	switch {
	case !av.IsAvailable:
		check.Reason = "This slot is no longer available"
	case av.Booking.Remaining() < guests:
		check.Reason = fmt.Sprintf("Only %d spot(s) remaining for this slot.", av.Booking.Remaining())
	default:
		check.Available = true
		check.AvailableSlots = av.Booking.Remaining()
	}
	return check, nil
}

func (s *availabilityService) Update(ctx context.Context, guideID, id string, updates *model.AvailabilityUpdate) error {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.GuideID != guideID {
		return apperrors.Forbidden("You can only modify your own availability")
	}
	if existing.Booking.Count > 0 {
		return apperrors.Conflict("Cannot modify a slot that already has bookings")
	}

	merged := s.merge(existing, updates)
	if err := s.normalize(merged); err != nil {
		return err
	}
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	lockID, err := s.acquireDayLock(ctx, guideID, merged.SpecificDate)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release day lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	siblings, err := s.repo.FindByGuideAndDate(ctx, guideID, merged.SpecificDate)
	if err != nil {
		return apperrors.Internal("Failed to check for overlapping slots", err)
	}
	if err := s.checkOverlap(merged, siblings, id); err != nil {
		return err
	}

	fields := bson.M{
		"specific_date":           merged.SpecificDate,
		"start_time":              merged.StartTime,
		"end_time":                merged.EndTime,
		"time_of_day":             merged.TimeOfDay,
		"duration_mins":           merged.DurationMins,
		"max_group_size":          merged.MaxGroupSize,
		"price_per_person":        merged.PricePerPerson,
		"todays_tourist.max_guests": merged.MaxGroupSize,
	}
	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		s.cfg.Log.Error("Failed to update availability", "id", id, "error", err)
		return apperrors.Internal("Failed to update availability", err)
	}

	s.cfg.Log.Info("Availability updated successfully", "id", id, "guide_id", guideID)
	return nil
}

func (s *availabilityService) Delete(ctx context.Context, guideID, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.GuideID != guideID {
		return apperrors.Forbidden("You can only delete your own availability")
	}
	if existing.Booking.Count > 0 {
		return apperrors.Conflict("Cannot delete a slot that already has bookings")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability", id)
		}
		s.cfg.Log.Error("Failed to delete availability", "id", id, "error", err)
		return apperrors.Internal("Failed to delete availability", err)
	}

	s.cfg.Log.Info("Availability deleted successfully", "id", id, "guide_id", guideID)
	return nil
}

func (s *availabilityService) Reserve(ctx context.Context, availabilityID, tourID string, guests int) error {
	err := s.repo.ReserveGuests(ctx, availabilityID, tourID, guests)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, availabilityerrors.ErrSlotTaken):
		return apperrors.Conflict("This slot is already booked for a different tour")
	case errors.Is(err, availabilityerrors.ErrCapacity):
		av, findErr := s.repo.FindByID(ctx, availabilityID)
		if findErr == nil {
			return apperrors.InvalidInput(fmt.Sprintf("Only %d spot(s) remaining for this slot.", av.Booking.Remaining()))
		}
		return apperrors.InvalidInput("Not enough spots remaining for this slot.")
	case errors.Is(err, availabilityerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Availability", availabilityID)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid availability ID format")
	default:
		s.cfg.Log.Error("Failed to reserve slot", "availability_id", availabilityID, "error", err)
		return apperrors.Internal("Failed to reserve slot", err)
	}
}

func (s *availabilityService) Release(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error {
	if err := s.repo.ReleaseGuests(ctx, guideID, date, startTime, guests); err != nil {
		s.cfg.Log.Error("Failed to release slot",
			"guide_id", guideID,
			"date", date,
			"start_time", startTime,
			"error", err,
		)
		return apperrors.Internal("Failed to release slot", err)
	}
	return nil
}

func (s *availabilityService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC()
	deleted, err := s.repo.SweepExpired(ctx, cutoff)
	if err != nil {
		s.cfg.Log.Error("Availability sweep failed", "error", err)
		return 0, apperrors.Internal("Failed to sweep expired availabilities", err)
	}

	if deleted > 0 {
		s.cfg.Log.Info("Availability sweep completed", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// normalize canonicalizes the clock strings and fills the derived fields.
func (s *availabilityService) normalize(av *model.Availability) error {
	start, err := timeslot.Normalize(av.StartTime)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	end, err := timeslot.Normalize(av.EndTime)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	av.StartTime = start
	av.EndTime = end

	duration, err := timeslot.Duration(start, end)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	av.DurationMins = duration

	startMins, _ := timeslot.Parse(start)
	av.TimeOfDay = timeslot.Bucket(startMins)
	av.SpecificDate = av.SpecificDate.UTC().Truncate(24 * time.Hour)
	return nil
}

func (s *availabilityService) checkOverlap(av *model.Availability, existing []*model.Availability, skipID string) error {
	newStart, _ := timeslot.Parse(av.StartTime)
	newEnd, _ := timeslot.Parse(av.EndTime)

	for _, e := range existing {
		if skipID != "" && e.ID == skipID {
			continue
		}
		existingStart, err := timeslot.Parse(e.StartTime)
		if err != nil {
			continue
		}
		existingEnd, err := timeslot.Parse(e.EndTime)
		if err != nil {
			continue
		}
		if timeslot.Overlaps(newStart, newEnd, existingStart, existingEnd) {
			return apperrors.Conflict(fmt.Sprintf(
				"This slot overlaps an existing slot (%s - %s)", e.StartTime, e.EndTime,
			))
		}
	}
	return nil
}

// acquireDayLock creates an advisory lock for a guide's day.
// Returns the lock ID if successful, or conflict error if lock already exists.
func (s *availabilityService) acquireDayLock(ctx context.Context, guideID string, date time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s", guideID, date.UTC().Format("2006-01-02"))

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another change to this day is in progress. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire day lock", err)
	}

	return lockID, nil
}

func (s *availabilityService) merge(existing *model.Availability, updates *model.AvailabilityUpdate) *model.Availability {
	merged := *existing

	if updates.SpecificDate != nil {
		merged.SpecificDate = *updates.SpecificDate
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.MaxGroupSize != nil {
		merged.MaxGroupSize = *updates.MaxGroupSize
	}
	if updates.PricePerPerson != nil {
		merged.PricePerPerson = *updates.PricePerPerson
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/errors"
	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	notificationservice "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	reviewerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/review/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/review/repository"
	tourrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/repository"
	userrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/user/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type ReviewService interface {
	Create(ctx context.Context, authorID string, input *model.ReviewCreate) (*model.Review, error)
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetForTour(ctx context.Context, tourID string, limit, offset int) ([]*model.Review, int64, error)
	GetForGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Review, int64, error)
	GetByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Review, int64, error)
	Update(ctx context.Context, authorID, id string, updates *model.ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, userID string, isAdmin bool, id string) error
}

type reviewService struct {
	repo     repository.ReviewRepository
	bookings bookingrepo.BookingRepository
	tours    tourrepo.TourRepository
	users    userrepo.UserRepository
	notify   notificationservice.NotificationService
	validate *validator.Validate
	cfg      *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookings bookingrepo.BookingRepository,
	tours tourrepo.TourRepository,
	users userrepo.UserRepository,
	notify notificationservice.NotificationService,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:     repo,
		bookings: bookings,
		tours:    tours,
		users:    users,
		notify:   notify,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Create writes the review and folds its rating into the target's
// running aggregate in one transaction. Only the tourist of a completed
// booking may review, once per target.
func (s *reviewService) Create(ctx context.Context, authorID string, input *model.ReviewCreate) (*model.Review, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Validation("Review validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	booking, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", input.BookingID)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking for review", "booking_id", input.BookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.TouristID != authorID {
		return nil, apperrors.Forbidden("You can only review your own bookings")
	}
	if booking.Status != model.BookingCompleted {
		return nil, apperrors.InvalidInput("You can only review completed bookings")
	}

	review := &model.Review{
		BookingID:       booking.ID,
		TourID:          booking.TourID,
		AuthorID:        authorID,
		Target:          input.Target,
		Rating:          input.Rating,
		Content:         input.Content,
		Photos:          input.Photos,
		ExperienceTags:  input.ExperienceTags,
		VerifiedBooking: true,
	}
	if input.Target == model.ReviewTargetGuide {
		review.GuideID = booking.GuideID
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, review); err != nil {
			return err
		}
		return s.applyRatingDelta(sessCtx, review, booking, float64(input.Rating), 1)
	})
	if err != nil {
		if errors.Is(err, reviewerrors.ErrDuplicate) {
			return nil, apperrors.Conflict("You have already reviewed this booking")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Review creation transaction failed", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	notifyType := model.NotifyReviewReceivedTour
	if input.Target == model.ReviewTargetGuide {
		notifyType = model.NotifyReviewReceivedGuide
	}
	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.GuideID,
		Type:              notifyType,
		Title:             "New review received",
		Message:           "A tourist left a review on a completed booking.",
		Priority:          model.PriorityMedium,
		RelatedEntityID:   review.ID,
		RelatedEntityType: "review",
	})

	s.cfg.Log.Info("Review created successfully",
		"id", review.ID,
		"booking_id", booking.ID,
		"target", review.Target,
		"rating", review.Rating,
	)
	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	return s.findReview(ctx, id)
}

func (s *reviewService) GetForTour(ctx context.Context, tourID string, limit, offset int) ([]*model.Review, int64, error) {
	return s.list(ctx, repository.ReviewFilter{TourID: tourID, Target: model.ReviewTargetTour}, limit, offset)
}

func (s *reviewService) GetForGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Review, int64, error) {
	return s.list(ctx, repository.ReviewFilter{GuideID: guideID, Target: model.ReviewTargetGuide}, limit, offset)
}

func (s *reviewService) GetByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Review, int64, error) {
	return s.list(ctx, repository.ReviewFilter{AuthorID: authorID}, limit, offset)
}

func (s *reviewService) list(ctx context.Context, filter repository.ReviewFilter, limit, offset int) ([]*model.Review, int64, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var reviews []*model.Review
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count reviews", "error", err)
			errCount = apperrors.Internal("Failed to count reviews", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reviews, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reviews", "error", err)
			errFind = apperrors.Internal("Failed to retrieve reviews", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return reviews, count, nil
}

// Update edits content and, when the rating changes, shifts the target's
// aggregate by the difference without touching the review count.
func (s *reviewService) Update(ctx context.Context, authorID, id string, updates *model.ReviewUpdate) (*model.Review, error) {
	if err := s.validate.Struct(updates); err != nil {
		return nil, apperrors.Validation("Review validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.AuthorID != authorID {
		return nil, apperrors.Forbidden("You can only edit your own reviews")
	}

	set := bson.M{"is_edited": true}
	var ratingDelta float64
	if updates.Rating != nil && *updates.Rating != review.Rating {
		ratingDelta = float64(*updates.Rating - review.Rating)
		set["rating"] = *updates.Rating
	}
	if updates.Content != nil {
		set["content"] = *updates.Content
	}
	if updates.Photos != nil {
		set["photos"] = updates.Photos
	}
	if updates.ExperienceTags != nil {
		set["experience_tags"] = updates.ExperienceTags
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, id, set); err != nil {
			return err
		}
		if ratingDelta != 0 {
			return s.applyRatingDeltaByTarget(sessCtx, review, ratingDelta, 0)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Review update transaction failed", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update review", err)
	}

	if updates.Rating != nil {
		review.Rating = *updates.Rating
	}
	if updates.Content != nil {
		review.Content = *updates.Content
	}
	review.IsEdited = true

	s.cfg.Log.Info("Review updated", "id", id, "rating_delta", ratingDelta)
	return review, nil
}

// Delete removes the review and backs its rating out of the aggregate.
func (s *reviewService) Delete(ctx context.Context, userID string, isAdmin bool, id string) error {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && review.AuthorID != userID {
		return apperrors.Forbidden("You can only delete your own reviews")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}
		return s.applyRatingDeltaByTarget(sessCtx, review, -float64(review.Rating), -1)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Review deletion transaction failed", "id", id, "error", err)
		return apperrors.Internal("Failed to delete review", err)
	}

	s.cfg.Log.Info("Review deleted", "id", id, "deleted_by", userID)
	return nil
}

func (s *reviewService) applyRatingDelta(ctx context.Context, review *model.Review, booking *model.Booking, deltaSum float64, deltaCount int64) error {
	if review.Target == model.ReviewTargetGuide {
		return s.users.ApplyRatingDelta(ctx, booking.GuideID, deltaSum, deltaCount)
	}
	return s.tours.ApplyRatingDelta(ctx, booking.TourID, deltaSum, deltaCount)
}

func (s *reviewService) applyRatingDeltaByTarget(ctx context.Context, review *model.Review, deltaSum float64, deltaCount int64) error {
	if review.Target == model.ReviewTargetGuide {
		return s.users.ApplyRatingDelta(ctx, review.GuideID, deltaSum, deltaCount)
	}
	return s.tours.ApplyRatingDelta(ctx, review.TourID, deltaSum, deltaCount)
}

func (s *reviewService) findReview(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviewerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Review", id)
		}
		if errors.Is(err, reviewerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid review ID format")
		}
		s.cfg.Log.Error("Failed to get review by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve review", err)
	}
	return review, nil
}

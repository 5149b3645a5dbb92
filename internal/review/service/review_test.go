package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/errors"
	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	reviewerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/review/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/review/repository"
	tourrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type mockReviewRepository struct {
	createFunc  func(ctx context.Context, review *model.Review) error
	findByIDFnc func(ctx context.Context, id string) (*model.Review, error)
	updateFunc  func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, review)
	}
	review.ID = testReviewID
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	if m.findByIDFnc != nil {
		return m.findByIDFnc(ctx, id)
	}
	return nil, reviewerrors.ErrNotFound
}

func (m *mockReviewRepository) FindByBookingAndTarget(ctx context.Context, bookingID string, target model.ReviewTarget) (*model.Review, error) {
	return nil, reviewerrors.ErrNotFound
}

func (m *mockReviewRepository) FindAll(ctx context.Context, filter repository.ReviewFilter, limit, offset int) ([]*model.Review, error) {
	return nil, nil
}

func (m *mockReviewRepository) Count(ctx context.Context, filter repository.ReviewFilter) (int64, error) {
	return 0, nil
}

func (m *mockReviewRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReviewRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBookingRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter bookingrepo.BookingFilter, limit, offset int) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter bookingrepo.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) CountByStatus(ctx context.Context, filter bookingrepo.BookingFilter) ([]model.StatusCount, error) {
	return nil, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) UpdateStatusGuarded(ctx context.Context, id string, from []model.BookingStatus, updates bson.M) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockTourRepository struct {
	ratingDeltaFunc func(ctx context.Context, id string, deltaSum float64, deltaCount int64) error
}

func (m *mockTourRepository) Create(ctx context.Context, tour *model.Tour) error { return nil }

func (m *mockTourRepository) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	return nil, nil
}

func (m *mockTourRepository) FindAll(ctx context.Context, filter tourrepo.TourFilter, limit, offset int) ([]*model.Tour, error) {
	return nil, nil
}

func (m *mockTourRepository) Count(ctx context.Context, filter tourrepo.TourFilter) (int64, error) {
	return 0, nil
}

func (m *mockTourRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockTourRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockTourRepository) ApplyRatingDelta(ctx context.Context, id string, deltaSum float64, deltaCount int64) error {
	if m.ratingDeltaFunc != nil {
		return m.ratingDeltaFunc(ctx, id, deltaSum, deltaCount)
	}
	return nil
}

type mockUserRepository struct {
	ratingDeltaFunc func(ctx context.Context, id string, deltaSum float64, deltaCount int64) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) FindAll(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) Count(ctx context.Context, role model.Role) (int64, error) {
	return 0, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockUserRepository) ApplyRatingDelta(ctx context.Context, id string, deltaSum float64, deltaCount int64) error {
	if m.ratingDeltaFunc != nil {
		return m.ratingDeltaFunc(ctx, id, deltaSum, deltaCount)
	}
	return nil
}

type mockNotificationService struct {
	notified []*model.Notification
}

func (m *mockNotificationService) Notify(ctx context.Context, n *model.Notification) {
	m.notified = append(m.notified, n)
}

func (m *mockNotificationService) GetForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*model.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

const (
	testReviewID  = "64f1b2c3d4e5f6a7b8c9d0e1"
	testBookingID = "64f1b2c3d4e5f6a7b8c9d0e2"
	testTourID    = "64f1b2c3d4e5f6a7b8c9d0e3"
	testGuideID   = "64f1b2c3d4e5f6a7b8c9d0e4"
	testTouristID = "64f1b2c3d4e5f6a7b8c9d0e5"
)

type testDeps struct {
	repo     *mockReviewRepository
	bookings *mockBookingRepository
	tours    *mockTourRepository
	users    *mockUserRepository
	notify   *mockNotificationService
}

func newTestService(deps testDeps) ReviewService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	if deps.repo == nil {
		deps.repo = &mockReviewRepository{}
	}
	if deps.bookings == nil {
		deps.bookings = &mockBookingRepository{}
	}
	if deps.tours == nil {
		deps.tours = &mockTourRepository{}
	}
	if deps.users == nil {
		deps.users = &mockUserRepository{}
	}
	if deps.notify == nil {
		deps.notify = &mockNotificationService{}
	}

	return NewReviewService(deps.repo, deps.bookings, deps.tours, deps.users, deps.notify, &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	})
}

func completedBooking() *model.Booking {
	return &model.Booking{
		ID:        testBookingID,
		TourID:    testTourID,
		GuideID:   testGuideID,
		TouristID: testTouristID,
		Status:    model.BookingCompleted,
	}
}

func TestCreate_TourReviewFoldsIntoTourAggregate(t *testing.T) {
	var deltaID string
	var deltaSum float64
	var deltaCount int64
	deps := testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return completedBooking(), nil
			},
		},
		tours: &mockTourRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				deltaID, deltaSum, deltaCount = id, sum, count
				return nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	review, err := svc.Create(context.Background(), testTouristID, &model.ReviewCreate{
		BookingID: testBookingID,
		Target:    model.ReviewTargetTour,
		Rating:    4,
		Content:   "Great tour of Old Dhaka",
	})
	require.NoError(t, err)

	assert.Equal(t, testTourID, deltaID)
	assert.Equal(t, 4.0, deltaSum)
	assert.Equal(t, int64(1), deltaCount)
	assert.Equal(t, testTourID, review.TourID)
	assert.Empty(t, review.GuideID)
	assert.True(t, review.VerifiedBooking)
	require.Len(t, deps.notify.notified, 1)
	assert.Equal(t, model.NotifyReviewReceivedTour, deps.notify.notified[0].Type)
	assert.Equal(t, testGuideID, deps.notify.notified[0].UserID)
}

func TestCreate_GuideReviewFoldsIntoGuideAggregate(t *testing.T) {
	var userDeltaID string
	tourTouched := false
	deps := testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return completedBooking(), nil
			},
		},
		tours: &mockTourRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				tourTouched = true
				return nil
			},
		},
		users: &mockUserRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				userDeltaID = id
				return nil
			},
		},
	}
	svc := newTestService(deps)

	review, err := svc.Create(context.Background(), testTouristID, &model.ReviewCreate{
		BookingID: testBookingID,
		Target:    model.ReviewTargetGuide,
		Rating:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, testGuideID, userDeltaID)
	assert.Equal(t, testGuideID, review.GuideID)
	assert.False(t, tourTouched)
}

func TestCreate_ForbiddenForStranger(t *testing.T) {
	deps := testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return completedBooking(), nil
			},
		},
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), testGuideID, &model.ReviewCreate{
		BookingID: testBookingID,
		Target:    model.ReviewTargetTour,
		Rating:    4,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestCreate_RejectsUnfinishedBooking(t *testing.T) {
	deps := testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				booking := completedBooking()
				booking.Status = model.BookingConfirmed
				return booking, nil
			},
		},
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), testTouristID, &model.ReviewCreate{
		BookingID: testBookingID,
		Target:    model.ReviewTargetTour,
		Rating:    4,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestCreate_DuplicateBecomesConflict(t *testing.T) {
	deps := testDeps{
		repo: &mockReviewRepository{
			createFunc: func(ctx context.Context, review *model.Review) error {
				return reviewerrors.ErrDuplicate
			},
		},
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return completedBooking(), nil
			},
		},
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), testTouristID, &model.ReviewCreate{
		BookingID: testBookingID,
		Target:    model.ReviewTargetTour,
		Rating:    4,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestUpdate_ShiftsRatingWithoutCountChange(t *testing.T) {
	var deltaSum float64
	deltaCount := int64(99)
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{
					ID:       testReviewID,
					TourID:   testTourID,
					AuthorID: testTouristID,
					Target:   model.ReviewTargetTour,
					Rating:   3,
				}, nil
			},
		},
		tours: &mockTourRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				deltaSum, deltaCount = sum, count
				return nil
			},
		},
	}
	svc := newTestService(deps)

	newRating := 5
	review, err := svc.Update(context.Background(), testTouristID, testReviewID, &model.ReviewUpdate{
		Rating: &newRating,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, deltaSum)
	assert.Equal(t, int64(0), deltaCount)
	assert.Equal(t, 5, review.Rating)
	assert.True(t, review.IsEdited)
}

func TestUpdate_UnchangedRatingSkipsAggregate(t *testing.T) {
	touched := false
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{
					ID:       testReviewID,
					TourID:   testTourID,
					AuthorID: testTouristID,
					Target:   model.ReviewTargetTour,
					Rating:   4,
				}, nil
			},
		},
		tours: &mockTourRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				touched = true
				return nil
			},
		},
	}
	svc := newTestService(deps)

	content := "Updated impressions after the trip"
	_, err := svc.Update(context.Background(), testTouristID, testReviewID, &model.ReviewUpdate{
		Content: &content,
	})
	require.NoError(t, err)
	assert.False(t, touched)
}

func TestUpdate_ForbiddenForNonAuthor(t *testing.T) {
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{ID: testReviewID, AuthorID: testTouristID}, nil
			},
		},
	}
	svc := newTestService(deps)

	_, err := svc.Update(context.Background(), testGuideID, testReviewID, &model.ReviewUpdate{})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestDelete_BacksOutRatingAndCount(t *testing.T) {
	var deltaID string
	var deltaSum float64
	var deltaCount int64
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{
					ID:       testReviewID,
					GuideID:  testGuideID,
					AuthorID: testTouristID,
					Target:   model.ReviewTargetGuide,
					Rating:   4,
				}, nil
			},
		},
		users: &mockUserRepository{
			ratingDeltaFunc: func(ctx context.Context, id string, sum float64, count int64) error {
				deltaID, deltaSum, deltaCount = id, sum, count
				return nil
			},
		},
	}
	svc := newTestService(deps)

	err := svc.Delete(context.Background(), testTouristID, false, testReviewID)
	require.NoError(t, err)

	assert.Equal(t, testGuideID, deltaID)
	assert.Equal(t, -4.0, deltaSum)
	assert.Equal(t, int64(-1), deltaCount)
}

func TestDelete_AdminMayDeleteAnyReview(t *testing.T) {
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{
					ID:       testReviewID,
					TourID:   testTourID,
					AuthorID: testTouristID,
					Target:   model.ReviewTargetTour,
					Rating:   2,
				}, nil
			},
		},
	}
	svc := newTestService(deps)

	err := svc.Delete(context.Background(), "64f1b2c3d4e5f6a7b8c9d0ff", true, testReviewID)
	require.NoError(t, err)
}

func TestDelete_ForbiddenForStranger(t *testing.T) {
	deps := testDeps{
		repo: &mockReviewRepository{
			findByIDFnc: func(ctx context.Context, id string) (*model.Review, error) {
				return &model.Review{ID: testReviewID, AuthorID: testTouristID}, nil
			},
		},
	}
	svc := newTestService(deps)

	err := svc.Delete(context.Background(), testGuideID, false, testReviewID)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

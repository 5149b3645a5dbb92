package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	availabilityerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/validator"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

// Mock repository for testing
type mockAvailabilityRepository struct {
	createFunc          func(ctx context.Context, av *model.Availability) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Availability, error)
	findByGuideDateFunc func(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error)
	reserveFunc         func(ctx context.Context, id, tourID string, guests int) error
	releaseFunc         func(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error
	sweepFunc           func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockAvailabilityRepository) Create(ctx context.Context, av *model.Availability) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, av)
	}
	return nil
}

func (m *mockAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.Availability, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockAvailabilityRepository) FindByGuideAndDate(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error) {
	if m.findByGuideDateFunc != nil {
		return m.findByGuideDateFunc(ctx, guideID, date)
	}
	return nil, nil
}

func (m *mockAvailabilityRepository) FindByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, error) {
	return nil, nil
}

func (m *mockAvailabilityRepository) CountByGuide(ctx context.Context, guideID string) (int64, error) {
	return 0, nil
}

func (m *mockAvailabilityRepository) FindOpenInWindow(ctx context.Context, from, to time.Time, limit, offset int) ([]*model.Availability, error) {
	return nil, nil
}

func (m *mockAvailabilityRepository) CountOpenInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	return 0, nil
}

func (m *mockAvailabilityRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockAvailabilityRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockAvailabilityRepository) ReserveGuests(ctx context.Context, id, tourID string, guests int) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, id, tourID, guests)
	}
	return nil
}

func (m *mockAvailabilityRepository) ReleaseGuests(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, guideID, date, startTime, guests)
	}
	return nil
}

func (m *mockAvailabilityRepository) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx, before)
	}
	return 0, nil
}

func (m *mockAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

func newTestService(repo *mockAvailabilityRepository) *availabilityService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:                     log,
		ReadTimeout:             5 * time.Second,
		WriteTimeout:            5 * time.Second,
		AvailabilityHorizonDays: 7,
	}

	return &availabilityService{
		repo:      repo,
		lockRepo:  &mockSlotLockRepository{},
		validator: validator.NewAvailabilityValidator(log, 7),
		cfg:       cfg,
	}
}

const (
	testGuideID = "64f1b2c3d4e5f6a7b8c9d0e1"
	testSlotID  = "64f1b2c3d4e5f6a7b8c9d0e2"
	testTourID  = "64f1b2c3d4e5f6a7b8c9d0e3"
)

func tomorrow() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
}

func TestCreate_NormalizesAndDerivesFields(t *testing.T) {
	var created *model.Availability
	repo := &mockAvailabilityRepository{
		createFunc: func(ctx context.Context, av *model.Availability) error {
			created = av
			av.ID = testSlotID
			return nil
		},
	}
	svc := newTestService(repo)

	av := &model.Availability{
		SpecificDate:   tomorrow(),
		StartTime:      "09:00 am",
		EndTime:        "11:30 AM",
		MaxGroupSize:   4,
		PricePerPerson: 50,
	}
	err := svc.Create(context.Background(), testGuideID, av)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "9:00 AM", created.StartTime)
	assert.Equal(t, "11:30 AM", created.EndTime)
	assert.Equal(t, model.TimeOfDayMorning, created.TimeOfDay)
	assert.Equal(t, 150, created.DurationMins)
	assert.True(t, created.IsAvailable)
	assert.Equal(t, 4, created.Booking.MaxGuests)
	assert.Equal(t, 0, created.Booking.Count)
}

func TestCreate_RejectsOverlap(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByGuideDateFunc: func(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error) {
			return []*model.Availability{
				{ID: "existing", StartTime: "10:00 AM", EndTime: "12:00 PM"},
			}, nil
		},
	}
	svc := newTestService(repo)

	av := &model.Availability{
		SpecificDate:   tomorrow(),
		StartTime:      "11:00 AM",
		EndTime:        "1:00 PM",
		MaxGroupSize:   4,
		PricePerPerson: 50,
	}
	err := svc.Create(context.Background(), testGuideID, av)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestCreate_AllowsBackToBackSlots(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByGuideDateFunc: func(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error) {
			return []*model.Availability{
				{ID: "existing", StartTime: "9:00 AM", EndTime: "11:00 AM"},
			}, nil
		},
	}
	svc := newTestService(repo)

	av := &model.Availability{
		SpecificDate:   tomorrow(),
		StartTime:      "11:00 AM",
		EndTime:        "1:00 PM",
		MaxGroupSize:   4,
		PricePerPerson: 50,
	}
	err := svc.Create(context.Background(), testGuideID, av)
	assert.NoError(t, err)
}

func TestCreate_RejectsDateBeyondHorizon(t *testing.T) {
	svc := newTestService(&mockAvailabilityRepository{})

	av := &model.Availability{
		SpecificDate:   tomorrow().AddDate(0, 0, 30),
		StartTime:      "9:00 AM",
		EndTime:        "11:00 AM",
		MaxGroupSize:   4,
		PricePerPerson: 50,
	}
	err := svc.Create(context.Background(), testGuideID, av)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestCheckSlot_CapacityScenarios(t *testing.T) {
	slot := &model.Availability{
		ID:           testSlotID,
		GuideID:      testGuideID,
		IsAvailable:  true,
		StartTime:    "9:00 AM",
		EndTime:      "11:00 AM",
		MaxGroupSize: 2,
		Booking:      model.SlotBooking{MaxGuests: 2},
	}
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Availability, error) {
			return slot, nil
		},
	}
	svc := newTestService(repo)
	ctx := context.Background()

	check, err := svc.CheckSlot(ctx, testSlotID, 2)
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Equal(t, 2, check.AvailableSlots)

	slot.Booking.Count = 1
	slot.Booking.IsBooked = true

	check, err = svc.CheckSlot(ctx, testSlotID, 2)
	require.NoError(t, err)
	assert.False(t, check.Available)
	assert.Equal(t, "Only 1 spot(s) remaining for this slot.", check.Reason)

	check, err = svc.CheckSlot(ctx, testSlotID, 1)
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Equal(t, 1, check.AvailableSlots)
}

func TestReserve_TranslatesRepositoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{name: "slot taken", repoErr: availabilityerrors.ErrSlotTaken, wantCode: apperrors.CodeConflict},
		{name: "capacity", repoErr: availabilityerrors.ErrCapacity, wantCode: apperrors.CodeInvalidInput},
		{name: "not found", repoErr: availabilityerrors.ErrNotFound, wantCode: apperrors.CodeNotFound},
		{name: "invalid id", repoErr: availabilityerrors.ErrInvalidID, wantCode: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAvailabilityRepository{
				reserveFunc: func(ctx context.Context, id, tourID string, guests int) error {
					return tt.repoErr
				},
				findByIDFunc: func(ctx context.Context, id string) (*model.Availability, error) {
					return &model.Availability{
						ID:      testSlotID,
						Booking: model.SlotBooking{Count: 1, MaxGuests: 2},
					}, nil
				},
			}
			svc := newTestService(repo)

			err := svc.Reserve(context.Background(), testSlotID, testTourID, 2)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsAppError(err).Code)
		})
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	var sweeps int
	repo := &mockAvailabilityRepository{
		sweepFunc: func(ctx context.Context, before time.Time) (int64, error) {
			sweeps++
			if sweeps == 1 {
				return 3, nil
			}
			return 0, nil
		},
	}
	svc := newTestService(repo)
	ctx := context.Background()

	deleted, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	deleted, err = svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	payouterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payout/repository"
	settingsservice "github.com/azmiruddin-143/Local-Guide-Server/internal/settings/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/money"
)

type mockPayoutRepository struct {
	createFunc        func(ctx context.Context, payout *model.Payout) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Payout, error)
	countPendingFunc  func(ctx context.Context, guideID string) (int64, error)
	statsFunc         func(ctx context.Context, filter repository.PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error)
	updateGuardedFunc func(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error
}

func (m *mockPayoutRepository) Create(ctx context.Context, payout *model.Payout) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payout)
	}
	payout.ID = testPayoutID
	return nil
}

func (m *mockPayoutRepository) FindByID(ctx context.Context, id string) (*model.Payout, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, payouterrors.ErrNotFound
}

func (m *mockPayoutRepository) FindAll(ctx context.Context, filter repository.PayoutFilter, limit, offset int) ([]*model.Payout, error) {
	return nil, nil
}

func (m *mockPayoutRepository) Count(ctx context.Context, filter repository.PayoutFilter) (int64, error) {
	return 0, nil
}

func (m *mockPayoutRepository) CountPendingByGuide(ctx context.Context, guideID string) (int64, error) {
	if m.countPendingFunc != nil {
		return m.countPendingFunc(ctx, guideID)
	}
	return 0, nil
}

func (m *mockPayoutRepository) StatsByStatus(ctx context.Context, filter repository.PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, filter)
	}
	return map[model.PayoutStatus]model.PayoutStatusStats{}, nil
}

func (m *mockPayoutRepository) UpdateStatusGuarded(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error {
	if m.updateGuardedFunc != nil {
		return m.updateGuardedFunc(ctx, id, from, updates)
	}
	return nil
}

func (m *mockPayoutRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockWalletService struct {
	moveToPendingFunc func(ctx context.Context, guideID string, amount float64) error
	settleFunc        func(ctx context.Context, guideID string, amount, fee float64) error
	reverseFunc       func(ctx context.Context, guideID string, amount float64, restorePayable bool) error
}

func (m *mockWalletService) GetBalance(ctx context.Context, guideID string) (*model.Wallet, error) {
	return &model.Wallet{GuideID: guideID}, nil
}

func (m *mockWalletService) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	return nil
}

func (m *mockWalletService) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	return nil
}

func (m *mockWalletService) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	if m.moveToPendingFunc != nil {
		return m.moveToPendingFunc(ctx, guideID, amount)
	}
	return nil
}

func (m *mockWalletService) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	if m.settleFunc != nil {
		return m.settleFunc(ctx, guideID, amount, fee)
	}
	return nil
}

func (m *mockWalletService) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	if m.reverseFunc != nil {
		return m.reverseFunc(ctx, guideID, amount, restorePayable)
	}
	return nil
}

func (m *mockWalletService) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	return nil
}

type mockSettingsService struct {
	settings *model.PlatformSettings
}

func (m *mockSettingsService) Get(ctx context.Context) (*model.PlatformSettings, error) {
	if m.settings != nil {
		return m.settings, nil
	}
	return model.DefaultPlatformSettings(), nil
}

func (m *mockSettingsService) Update(ctx context.Context, updates *settingsservice.SettingsUpdate) (*model.PlatformSettings, error) {
	return nil, nil
}

func (m *mockSettingsService) CalculateFee(ctx context.Context, amount float64) (float64, error) {
	settings, _ := m.Get(ctx)
	fee := settings.PlatformFee
	if !fee.Enabled {
		return 0, nil
	}
	if fee.Type == model.FeeFixed {
		return money.Round2(fee.FixedAmount), nil
	}
	return money.PercentOf(amount, fee.Percentage), nil
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
	testGuideID  = "64f1b2c3d4e5f6a7b8c9d0c1"
	testPayoutID = "64f1b2c3d4e5f6a7b8c9d0c2"
)

type testDeps struct {
	repo     *mockPayoutRepository
	wallets  *mockWalletService
	settings *mockSettingsService
	notify   *mockNotificationService
}

func newTestService(deps testDeps) PayoutService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	if deps.repo == nil {
		deps.repo = &mockPayoutRepository{}
	}
	if deps.wallets == nil {
		deps.wallets = &mockWalletService{}
	}
	if deps.settings == nil {
		deps.settings = &mockSettingsService{}
	}
	if deps.notify == nil {
		deps.notify = &mockNotificationService{}
	}

	return NewPayoutService(deps.repo, deps.wallets, deps.settings, deps.notify, &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	})
}

func TestRequest_DeductsPercentageFee(t *testing.T) {
	var created *model.Payout
	var movedAmount float64
	deps := testDeps{
		repo: &mockPayoutRepository{
			createFunc: func(ctx context.Context, payout *model.Payout) error {
				payout.ID = testPayoutID
				created = payout
				return nil
			},
		},
		wallets: &mockWalletService{
			moveToPendingFunc: func(ctx context.Context, guideID string, amount float64) error {
				movedAmount = amount
				return nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	payout, err := svc.Request(context.Background(), testGuideID, &model.PayoutRequest{
		Amount:        150,
		PaymentMethod: "bank_transfer",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 150.0, payout.Amount)
	assert.Equal(t, 22.5, payout.PlatformFee)
	assert.Equal(t, 127.5, payout.NetAmount)
	assert.Equal(t, model.PayoutPending, payout.Status)
	assert.Equal(t, "BDT", payout.Currency)
	assert.Equal(t, 150.0, movedAmount)

	require.Len(t, deps.notify.notified, 1)
	assert.Equal(t, model.NotifyPayoutRequested, deps.notify.notified[0].Type)
}

func TestRequest_RejectsBelowMinimum(t *testing.T) {
	svc := newTestService(testDeps{})

	_, err := svc.Request(context.Background(), testGuideID, &model.PayoutRequest{
		Amount:        50,
		PaymentMethod: "bank_transfer",
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
	assert.Contains(t, appErr.Message, "Minimum payout amount is 100.00")
}

func TestRequest_RejectsAboveMaximum(t *testing.T) {
	svc := newTestService(testDeps{})

	_, err := svc.Request(context.Background(), testGuideID, &model.PayoutRequest{
		Amount:        200000,
		PaymentMethod: "bank_transfer",
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestRequest_RejectsSecondInFlightPayout(t *testing.T) {
	svc := newTestService(testDeps{
		repo: &mockPayoutRepository{
			countPendingFunc: func(ctx context.Context, guideID string) (int64, error) {
				return 1, nil
			},
		},
	})

	_, err := svc.Request(context.Background(), testGuideID, &model.PayoutRequest{
		Amount:        150,
		PaymentMethod: "bank_transfer",
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestRequest_DisabledFeeMeansFullNet(t *testing.T) {
	settings := model.DefaultPlatformSettings()
	settings.PlatformFee.Enabled = false

	var created *model.Payout
	svc := newTestService(testDeps{
		repo: &mockPayoutRepository{
			createFunc: func(ctx context.Context, payout *model.Payout) error {
				created = payout
				return nil
			},
		},
		settings: &mockSettingsService{settings: settings},
	})

	_, err := svc.Request(context.Background(), testGuideID, &model.PayoutRequest{
		Amount:        500,
		PaymentMethod: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.PlatformFee)
	assert.Equal(t, 500.0, created.NetAmount)
}

func processingPayout() *model.Payout {
	return &model.Payout{
		ID:          testPayoutID,
		GuideID:     testGuideID,
		Amount:      150,
		PlatformFee: 22.5,
		NetAmount:   127.5,
		Currency:    "BDT",
		Status:      model.PayoutProcessing,
	}
}

func TestMarkSent_SettlesWallet(t *testing.T) {
	var settledAmount, settledFee float64
	deps := testDeps{
		repo: &mockPayoutRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payout, error) {
				return processingPayout(), nil
			},
			updateGuardedFunc: func(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error {
				assert.Equal(t, []model.PayoutStatus{model.PayoutProcessing}, from)
				assert.Equal(t, model.PayoutSent, updates["status"])
				return nil
			},
		},
		wallets: &mockWalletService{
			settleFunc: func(ctx context.Context, guideID string, amount, fee float64) error {
				settledAmount = amount
				settledFee = fee
				assert.Equal(t, testGuideID, guideID)
				return nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	err := svc.MarkSent(context.Background(), testPayoutID, "prov_123")
	require.NoError(t, err)
	assert.Equal(t, 150.0, settledAmount)
	assert.Equal(t, 22.5, settledFee)

	require.Len(t, deps.notify.notified, 1)
	assert.Equal(t, model.NotifyPayoutProcessed, deps.notify.notified[0].Type)
}

func TestMarkSent_RejectsPendingPayout(t *testing.T) {
	payout := processingPayout()
	payout.Status = model.PayoutPending

	svc := newTestService(testDeps{
		repo: &mockPayoutRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payout, error) {
				return payout, nil
			},
		},
	})

	err := svc.MarkSent(context.Background(), testPayoutID, "prov_123")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestMarkFailed_ReversesFullAmount(t *testing.T) {
	var reversedAmount float64
	var restoredPayable bool
	deps := testDeps{
		repo: &mockPayoutRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payout, error) {
				return processingPayout(), nil
			},
		},
		wallets: &mockWalletService{
			reverseFunc: func(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
				reversedAmount = amount
				restoredPayable = restorePayable
				return nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	err := svc.MarkFailed(context.Background(), testPayoutID, "provider rejected account")
	require.NoError(t, err)
	assert.Equal(t, 150.0, reversedAmount)
	assert.True(t, restoredPayable)

	require.Len(t, deps.notify.notified, 1)
	assert.Equal(t, model.NotifyPayoutFailed, deps.notify.notified[0].Type)
}

func TestCancel_OnlyOwnerAndOnlyPending(t *testing.T) {
	payout := processingPayout()
	payout.Status = model.PayoutPending

	svc := newTestService(testDeps{
		repo: &mockPayoutRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payout, error) {
				return payout, nil
			},
		},
	})

	err := svc.Cancel(context.Background(), "64f1b2c3d4e5f6a7b8c9d0ff", testPayoutID)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	require.NoError(t, svc.Cancel(context.Background(), testGuideID, testPayoutID))

	payout.Status = model.PayoutSent
	err = svc.Cancel(context.Background(), testGuideID, testPayoutID)
	require.Error(t, err)
	appErr, ok = err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestListAll_PadsStatusStats(t *testing.T) {
	svc := newTestService(testDeps{
		repo: &mockPayoutRepository{
			statsFunc: func(ctx context.Context, filter repository.PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error) {
				return map[model.PayoutStatus]model.PayoutStatusStats{
					model.PayoutSent: {TotalAmount: 127.5, Count: 1},
				}, nil
			},
		},
	})

	_, _, stats, err := svc.ListAll(context.Background(), "", 10, 0)
	require.NoError(t, err)

	require.Len(t, stats, 5)
	assert.Equal(t, model.PayoutStatusStats{TotalAmount: 127.5, Count: 1}, stats[model.PayoutSent])
	assert.Equal(t, model.PayoutStatusStats{}, stats[model.PayoutPending])
	assert.Equal(t, model.PayoutStatusStats{}, stats[model.PayoutCancelled])
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	payoutrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/stats/cache"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/stats/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type mockStatsRepository struct {
	usersByRoleFunc    func(ctx context.Context) (map[model.Role]int64, error)
	bookingsFunc       func(ctx context.Context, scope repository.BookingScope) (map[model.BookingStatus]int64, error)
	totalRevenueFunc   func(ctx context.Context) (float64, error)
	touristSpendFunc   func(ctx context.Context, touristID string) (float64, int64, error)
	reviewSummaryFunc  func(ctx context.Context, scope repository.ReviewScope) (model.ReviewSummary, error)
	guideRevenueCalled bool
}

func (m *mockStatsRepository) CountUsersByRole(ctx context.Context) (map[model.Role]int64, error) {
	if m.usersByRoleFunc != nil {
		return m.usersByRoleFunc(ctx)
	}
	return map[model.Role]int64{}, nil
}

func (m *mockStatsRepository) CountTours(ctx context.Context) (int64, int64, error) {
	return 0, 0, nil
}

func (m *mockStatsRepository) CountBookingsByStatus(ctx context.Context, scope repository.BookingScope) (map[model.BookingStatus]int64, error) {
	if m.bookingsFunc != nil {
		return m.bookingsFunc(ctx, scope)
	}
	return map[model.BookingStatus]int64{}, nil
}

func (m *mockStatsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	if m.totalRevenueFunc != nil {
		return m.totalRevenueFunc(ctx)
	}
	return 0, nil
}

func (m *mockStatsRepository) MonthlyRevenue(ctx context.Context, months int) ([]model.MonthlyRevenuePoint, error) {
	return nil, nil
}

func (m *mockStatsRepository) GuideMonthlyRevenue(ctx context.Context, guideID string, months int) ([]model.MonthlyRevenuePoint, error) {
	m.guideRevenueCalled = true
	return nil, nil
}

func (m *mockStatsRepository) TopGuides(ctx context.Context, limit int) ([]model.GuideLeaderboardEntry, error) {
	return nil, nil
}

func (m *mockStatsRepository) PopularTours(ctx context.Context, limit int) ([]model.PopularTourEntry, error) {
	return nil, nil
}

func (m *mockStatsRepository) ReviewSummary(ctx context.Context, scope repository.ReviewScope) (model.ReviewSummary, error) {
	if m.reviewSummaryFunc != nil {
		return m.reviewSummaryFunc(ctx, scope)
	}
	return model.ReviewSummary{}, nil
}

func (m *mockStatsRepository) TouristSpend(ctx context.Context, touristID string) (float64, int64, error) {
	if m.touristSpendFunc != nil {
		return m.touristSpendFunc(ctx, touristID)
	}
	return 0, 0, nil
}

type mockPayoutRepository struct {
	statsFunc func(ctx context.Context, filter payoutrepo.PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error)
}

func (m *mockPayoutRepository) Create(ctx context.Context, payout *model.Payout) error { return nil }

func (m *mockPayoutRepository) FindByID(ctx context.Context, id string) (*model.Payout, error) {
	return nil, nil
}

func (m *mockPayoutRepository) FindAll(ctx context.Context, filter payoutrepo.PayoutFilter, limit, offset int) ([]*model.Payout, error) {
	return nil, nil
}

func (m *mockPayoutRepository) Count(ctx context.Context, filter payoutrepo.PayoutFilter) (int64, error) {
	return 0, nil
}

func (m *mockPayoutRepository) CountPendingByGuide(ctx context.Context, guideID string) (int64, error) {
	return 0, nil
}

func (m *mockPayoutRepository) StatsByStatus(ctx context.Context, filter payoutrepo.PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, filter)
	}
	return map[model.PayoutStatus]model.PayoutStatusStats{}, nil
}

func (m *mockPayoutRepository) UpdateStatusGuarded(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error {
	return nil
}

func (m *mockPayoutRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockWalletService struct {
	balanceFunc func(ctx context.Context, guideID string) (*model.Wallet, error)
}

func (m *mockWalletService) GetBalance(ctx context.Context, guideID string) (*model.Wallet, error) {
	if m.balanceFunc != nil {
		return m.balanceFunc(ctx, guideID)
	}
	return &model.Wallet{GuideID: guideID}, nil
}

func (m *mockWalletService) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	return nil
}

func (m *mockWalletService) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	return nil
}

func (m *mockWalletService) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	return nil
}

func (m *mockWalletService) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	return nil
}

func (m *mockWalletService) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	return nil
}

func (m *mockWalletService) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	return nil
}

// memoryCache stands in for Redis so cache hit behavior can be asserted
// without a server.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

const testGuideID = "64f1b2c3d4e5f6a7b8c9d0f1"

func newTestService(repo *mockStatsRepository, payouts *mockPayoutRepository, wallets *mockWalletService, statsCache cache.Cache) StatsService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	if repo == nil {
		repo = &mockStatsRepository{}
	}
	if payouts == nil {
		payouts = &mockPayoutRepository{}
	}
	if wallets == nil {
		wallets = &mockWalletService{}
	}
	if statsCache == nil {
		statsCache = newMemoryCache()
	}

	return NewStatsService(repo, payouts, wallets, statsCache, &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	})
}

func TestAdminDashboard_BuildsAndCachesOnMiss(t *testing.T) {
	repo := &mockStatsRepository{
		usersByRoleFunc: func(ctx context.Context) (map[model.Role]int64, error) {
			return map[model.Role]int64{model.RoleTourist: 10, model.RoleGuide: 3}, nil
		},
		totalRevenueFunc: func(ctx context.Context) (float64, error) {
			return 4500.50, nil
		},
	}
	statsCache := newMemoryCache()
	svc := newTestService(repo, nil, nil, statsCache)

	dashboard, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4500.50, dashboard.TotalRevenue)
	assert.Equal(t, int64(10), dashboard.UsersByRole[model.RoleTourist])
	assert.Contains(t, statsCache.entries, cache.AdminDashboardKey())
}

func TestAdminDashboard_CacheHitSkipsPipelines(t *testing.T) {
	statsCache := newMemoryCache()
	require.NoError(t, statsCache.Set(context.Background(), cache.AdminDashboardKey(), &model.AdminDashboard{
		TotalRevenue: 999.0,
	}))

	called := false
	repo := &mockStatsRepository{
		totalRevenueFunc: func(ctx context.Context) (float64, error) {
			called = true
			return 0, nil
		},
	}
	svc := newTestService(repo, nil, nil, statsCache)

	dashboard, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 999.0, dashboard.TotalRevenue)
	assert.False(t, called)
}

func TestAdminDashboard_PadsEmptyPlatform(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	dashboard, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Len(t, dashboard.UsersByRole, 3)
	assert.Len(t, dashboard.BookingsByStatus, len(model.AllBookingStatuses()))
	assert.Len(t, dashboard.PayoutsByStatus, len(model.AllPayoutStatuses()))
	assert.NotNil(t, dashboard.MonthlyRevenue)
	assert.NotNil(t, dashboard.TopGuides)
	assert.NotNil(t, dashboard.PopularTours)
}

func TestGuideDashboard_MergesWalletBalances(t *testing.T) {
	var bookingScope repository.BookingScope
	repo := &mockStatsRepository{
		bookingsFunc: func(ctx context.Context, scope repository.BookingScope) (map[model.BookingStatus]int64, error) {
			bookingScope = scope
			return map[model.BookingStatus]int64{model.BookingCompleted: 7}, nil
		},
		reviewSummaryFunc: func(ctx context.Context, scope repository.ReviewScope) (model.ReviewSummary, error) {
			return model.ReviewSummary{Count: 4, AverageRating: 4.5}, nil
		},
	}
	wallets := &mockWalletService{
		balanceFunc: func(ctx context.Context, guideID string) (*model.Wallet, error) {
			return &model.Wallet{
				GuideID:        guideID,
				TotalEarned:    1200.0,
				PayableBalance: 300.0,
				PendingBalance: 150.0,
				TotalReceived:  750.0,
			}, nil
		},
	}
	svc := newTestService(repo, nil, wallets, nil)

	dashboard, err := svc.GuideDashboard(context.Background(), testGuideID)
	require.NoError(t, err)

	assert.Equal(t, testGuideID, bookingScope.GuideID)
	assert.Equal(t, 1200.0, dashboard.TotalEarned)
	assert.Equal(t, 300.0, dashboard.PayableBalance)
	assert.Equal(t, int64(7), dashboard.BookingsByStatus[model.BookingCompleted])
	assert.Equal(t, int64(0), dashboard.BookingsByStatus[model.BookingPending])
	assert.Equal(t, 4.5, dashboard.Reviews.AverageRating)
	assert.True(t, repo.guideRevenueCalled)
}

func TestTouristDashboard_SumsSpend(t *testing.T) {
	repo := &mockStatsRepository{
		touristSpendFunc: func(ctx context.Context, touristID string) (float64, int64, error) {
			return 820.0, 4, nil
		},
		bookingsFunc: func(ctx context.Context, scope repository.BookingScope) (map[model.BookingStatus]int64, error) {
			return map[model.BookingStatus]int64{model.BookingPending: 1}, nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	dashboard, err := svc.TouristDashboard(context.Background(), "64f1b2c3d4e5f6a7b8c9d0f2")
	require.NoError(t, err)

	assert.Equal(t, 820.0, dashboard.TotalSpent)
	assert.Equal(t, int64(4), dashboard.PaymentCount)
	assert.Equal(t, int64(1), dashboard.BookingsByStatus[model.BookingPending])
}

func TestGuideDashboard_RequiresGuideID(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.GuideDashboard(context.Background(), "")
	require.Error(t, err)
}

package service

import (
	"context"
	"sync"

	payoutrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/stats/cache"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/stats/repository"
	walletservice "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	leaderboardSize     = 5
	revenueSeriesMonths = 12
)

type StatsService interface {
	AdminDashboard(ctx context.Context) (*model.AdminDashboard, error)
	GuideDashboard(ctx context.Context, guideID string) (*model.GuideDashboard, error)
	TouristDashboard(ctx context.Context, touristID string) (*model.TouristDashboard, error)
}

type statsService struct {
	repo    repository.StatsRepository
	payouts payoutrepo.PayoutRepository
	wallets walletservice.WalletService
	cache   cache.Cache
	cfg     *config.Config
}

func NewStatsService(
	repo repository.StatsRepository,
	payouts payoutrepo.PayoutRepository,
	wallets walletservice.WalletService,
	statsCache cache.Cache,
	cfg *config.Config,
) StatsService {
	return &statsService{
		repo:    repo,
		payouts: payouts,
		wallets: wallets,
		cache:   statsCache,
		cfg:     cfg,
	}
}

// AdminDashboard assembles the platform-wide read model. The result is
// cached; staleness up to the TTL is acceptable for a dashboard.
func (s *statsService) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	key := cache.AdminDashboardKey()
	var cached model.AdminDashboard
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.cfg.Log.Warn("Stats cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	dashboard := &model.AdminDashboard{}
	errs := make([]error, 8)
	var wg sync.WaitGroup
	wg.Add(8)

	go func() {
		defer wg.Done()
		dashboard.UsersByRole, errs[0] = s.repo.CountUsersByRole(ctx)
	}()
	go func() {
		defer wg.Done()
		dashboard.TotalTours, dashboard.ActiveTours, errs[1] = s.repo.CountTours(ctx)
	}()
	go func() {
		defer wg.Done()
		dashboard.BookingsByStatus, errs[2] = s.repo.CountBookingsByStatus(ctx, repository.BookingScope{})
	}()
	go func() {
		defer wg.Done()
		dashboard.TotalRevenue, errs[3] = s.repo.TotalRevenue(ctx)
	}()
	go func() {
		defer wg.Done()
		dashboard.PayoutsByStatus, errs[4] = s.payouts.StatsByStatus(ctx, payoutrepo.PayoutFilter{})
	}()
	go func() {
		defer wg.Done()
		dashboard.Reviews, errs[5] = s.repo.ReviewSummary(ctx, repository.ReviewScope{})
	}()
	go func() {
		defer wg.Done()
		dashboard.MonthlyRevenue, errs[6] = s.repo.MonthlyRevenue(ctx, revenueSeriesMonths)
	}()
	go func() {
		defer wg.Done()
		dashboard.TopGuides, errs[7] = s.repo.TopGuides(ctx, leaderboardSize)
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to build admin dashboard", "error", err)
			return nil, apperrors.Internal("Failed to build dashboard", err)
		}
	}

	// PopularTours rides on the same bookings collection the leaderboard
	// just scanned, so it stays off the fan-out.
	popular, err := s.repo.PopularTours(ctx, leaderboardSize)
	if err != nil {
		s.cfg.Log.Error("Failed to build popular tours", "error", err)
		return nil, apperrors.Internal("Failed to build dashboard", err)
	}
	dashboard.PopularTours = popular
	s.normalizeAdmin(dashboard)

	if err := s.cache.Set(ctx, key, dashboard); err != nil {
		s.cfg.Log.Warn("Stats cache write failed", "key", key, "error", err)
	}
	return dashboard, nil
}

func (s *statsService) GuideDashboard(ctx context.Context, guideID string) (*model.GuideDashboard, error) {
	if guideID == "" {
		return nil, apperrors.InvalidInput("Guide ID cannot be empty")
	}

	key := cache.GuideDashboardKey(guideID)
	var cached model.GuideDashboard
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.cfg.Log.Warn("Stats cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	dashboard := &model.GuideDashboard{}
	errs := make([]error, 4)
	var wallet *model.Wallet
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		dashboard.BookingsByStatus, errs[0] = s.repo.CountBookingsByStatus(ctx, repository.BookingScope{GuideID: guideID})
	}()
	go func() {
		defer wg.Done()
		wallet, errs[1] = s.wallets.GetBalance(ctx, guideID)
	}()
	go func() {
		defer wg.Done()
		dashboard.Reviews, errs[2] = s.repo.ReviewSummary(ctx, repository.ReviewScope{GuideID: guideID})
	}()
	go func() {
		defer wg.Done()
		dashboard.MonthlyRevenue, errs[3] = s.repo.GuideMonthlyRevenue(ctx, guideID, revenueSeriesMonths)
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to build guide dashboard", "guide_id", guideID, "error", err)
			return nil, apperrors.Internal("Failed to build dashboard", err)
		}
	}

	dashboard.TotalEarned = wallet.TotalEarned
	dashboard.PayableBalance = wallet.PayableBalance
	dashboard.PendingBalance = wallet.PendingBalance
	dashboard.TotalReceived = wallet.TotalReceived
	fillBookingCounts(dashboard.BookingsByStatus)
	if dashboard.MonthlyRevenue == nil {
		dashboard.MonthlyRevenue = []model.MonthlyRevenuePoint{}
	}

	if err := s.cache.Set(ctx, key, dashboard); err != nil {
		s.cfg.Log.Warn("Stats cache write failed", "key", key, "error", err)
	}
	return dashboard, nil
}

func (s *statsService) TouristDashboard(ctx context.Context, touristID string) (*model.TouristDashboard, error) {
	if touristID == "" {
		return nil, apperrors.InvalidInput("Tourist ID cannot be empty")
	}

	key := cache.TouristDashboardKey(touristID)
	var cached model.TouristDashboard
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.cfg.Log.Warn("Stats cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	dashboard := &model.TouristDashboard{}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		dashboard.BookingsByStatus, errs[0] = s.repo.CountBookingsByStatus(ctx, repository.BookingScope{TouristID: touristID})
	}()
	go func() {
		defer wg.Done()
		dashboard.TotalSpent, dashboard.PaymentCount, errs[1] = s.repo.TouristSpend(ctx, touristID)
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to build tourist dashboard", "tourist_id", touristID, "error", err)
			return nil, apperrors.Internal("Failed to build dashboard", err)
		}
	}
	fillBookingCounts(dashboard.BookingsByStatus)

	if err := s.cache.Set(ctx, key, dashboard); err != nil {
		s.cfg.Log.Warn("Stats cache write failed", "key", key, "error", err)
	}
	return dashboard, nil
}

func (s *statsService) normalizeAdmin(dashboard *model.AdminDashboard) {
	if dashboard.UsersByRole == nil {
		dashboard.UsersByRole = map[model.Role]int64{}
	}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleGuide, model.RoleTourist} {
		if _, ok := dashboard.UsersByRole[role]; !ok {
			dashboard.UsersByRole[role] = 0
		}
	}
	fillBookingCounts(dashboard.BookingsByStatus)
	if dashboard.PayoutsByStatus == nil {
		dashboard.PayoutsByStatus = map[model.PayoutStatus]model.PayoutStatusStats{}
	}
	for _, status := range model.AllPayoutStatuses() {
		if _, ok := dashboard.PayoutsByStatus[status]; !ok {
			dashboard.PayoutsByStatus[status] = model.PayoutStatusStats{}
		}
	}
	if dashboard.MonthlyRevenue == nil {
		dashboard.MonthlyRevenue = []model.MonthlyRevenuePoint{}
	}
	if dashboard.TopGuides == nil {
		dashboard.TopGuides = []model.GuideLeaderboardEntry{}
	}
	if dashboard.PopularTours == nil {
		dashboard.PopularTours = []model.PopularTourEntry{}
	}
}

func fillBookingCounts(counts map[model.BookingStatus]int64) {
	if counts == nil {
		return
	}
	for _, status := range model.AllBookingStatuses() {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
}

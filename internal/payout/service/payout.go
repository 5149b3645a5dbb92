package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	notificationservice "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	payouterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payout/repository"
	settingsservice "github.com/azmiruddin-143/Local-Guide-Server/internal/settings/service"
	walleterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/errors"
	walletservice "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/money"
)

type PayoutService interface {
	Request(ctx context.Context, guideID string, input *model.PayoutRequest) (*model.Payout, error)
	GetByID(ctx context.Context, userID string, isAdmin bool, id string) (*model.Payout, error)
	GetByGuide(ctx context.Context, guideID string, status model.PayoutStatus, limit, offset int) ([]*model.Payout, int64, error)
	ListAll(ctx context.Context, status model.PayoutStatus, limit, offset int) ([]*model.Payout, int64, map[model.PayoutStatus]model.PayoutStatusStats, error)

	// Admin lifecycle.
	MarkProcessing(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id, providerPayoutID string) error
	MarkFailed(ctx context.Context, id, reason string) error

	// Guide-side cancellation, PENDING only.
	Cancel(ctx context.Context, guideID, id string) error
}

type payoutService struct {
	repo     repository.PayoutRepository
	wallets  walletservice.WalletService
	settings settingsservice.SettingsService
	notify   notificationservice.NotificationService
	validate *validator.Validate
	cfg      *config.Config
}

func NewPayoutService(
	repo repository.PayoutRepository,
	wallets walletservice.WalletService,
	settings settingsservice.SettingsService,
	notify notificationservice.NotificationService,
	cfg *config.Config,
) PayoutService {
	return &payoutService{
		repo:     repo,
		wallets:  wallets,
		settings: settings,
		notify:   notify,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Request opens a withdrawal. The platform fee comes off here, not at
// payment time: the wallet holds gross earnings and the payout nets
// them out. The wallet move and the payout insert commit together.
func (s *payoutService) Request(ctx context.Context, guideID string, input *model.PayoutRequest) (*model.Payout, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Validation("Payout validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.Amount < settings.Payout.MinimumAmount {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Minimum payout amount is %.2f", settings.Payout.MinimumAmount))
	}
	if settings.Payout.MaximumAmount > 0 && input.Amount > settings.Payout.MaximumAmount {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Maximum payout amount is %.2f", settings.Payout.MaximumAmount))
	}

	inFlight, err := s.repo.CountPendingByGuide(ctx, guideID)
	if err != nil {
		s.cfg.Log.Error("Failed to count pending payouts", "guide_id", guideID, "error", err)
		return nil, apperrors.Internal("Failed to check pending payouts", err)
	}
	if inFlight > 0 {
		return nil, apperrors.Conflict("You already have a payout in progress")
	}

	fee, err := s.settings.CalculateFee(ctx, input.Amount)
	if err != nil {
		return nil, err
	}

	payout := &model.Payout{
		GuideID:        guideID,
		Amount:         input.Amount,
		PlatformFee:    fee,
		NetAmount:      money.Round2(input.Amount - fee),
		Currency:       settings.Payment.Currency,
		Status:         model.PayoutPending,
		PaymentMethod:  input.PaymentMethod,
		AccountDetails: input.AccountDetails,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.wallets.MoveToPending(sessCtx, guideID, input.Amount); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, payout); err != nil {
			return apperrors.Internal("Failed to create payout", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, walleterrors.ErrInsufficientFunds) {
			return nil, apperrors.InvalidInput("Insufficient wallet balance for this payout")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Payout request transaction failed", "guide_id", guideID, "error", err)
		return nil, apperrors.Internal("Failed to request payout", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            guideID,
		Type:              model.NotifyPayoutRequested,
		Title:             "Payout requested",
		Message:           fmt.Sprintf("Your payout of %.2f %s was requested. Net amount after fees: %.2f.", payout.Amount, payout.Currency, payout.NetAmount),
		Priority:          model.PriorityMedium,
		RelatedEntityID:   payout.ID,
		RelatedEntityType: "payout",
	})

	s.cfg.Log.Info("Payout requested",
		"id", payout.ID,
		"guide_id", guideID,
		"amount", payout.Amount,
		"platform_fee", payout.PlatformFee,
		"net_amount", payout.NetAmount,
	)
	return payout, nil
}

func (s *payoutService) GetByID(ctx context.Context, userID string, isAdmin bool, id string) (*model.Payout, error) {
	payout, err := s.findPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && payout.GuideID != userID {
		return nil, apperrors.Forbidden("You do not have access to this payout")
	}
	return payout, nil
}

func (s *payoutService) GetByGuide(ctx context.Context, guideID string, status model.PayoutStatus, limit, offset int) ([]*model.Payout, int64, error) {
	filter := repository.PayoutFilter{GuideID: guideID, Status: status}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var payouts []*model.Payout
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count payouts", "guide_id", guideID, "error", err)
			errCount = apperrors.Internal("Failed to count payouts", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		payouts, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list payouts", "guide_id", guideID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve payouts", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return payouts, count, nil
}

// ListAll is the admin view with a per-status breakdown. Statuses with
// no payouts still show zero rows.
func (s *payoutService) ListAll(ctx context.Context, status model.PayoutStatus, limit, offset int) ([]*model.Payout, int64, map[model.PayoutStatus]model.PayoutStatusStats, error) {
	filter := repository.PayoutFilter{Status: status}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var payouts []*model.Payout
	var stats map[model.PayoutStatus]model.PayoutStatusStats
	var errCount, errFind, errStats error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count payouts", "error", err)
			errCount = apperrors.Internal("Failed to count payouts", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		payouts, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list payouts", "error", err)
			errFind = apperrors.Internal("Failed to retrieve payouts", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		stats, err = s.repo.StatsByStatus(sharedCtx, repository.PayoutFilter{})
		if err != nil {
			s.cfg.Log.Error("Failed to aggregate payout stats", "error", err)
			errStats = apperrors.Internal("Failed to aggregate payout stats", err)
		}
	}()

	wg.Wait()
	for _, err := range []error{errCount, errFind, errStats} {
		if err != nil {
			return nil, 0, nil, err
		}
	}
	return payouts, count, fillPayoutStats(stats), nil
}

func (s *payoutService) MarkProcessing(ctx context.Context, id string) error {
	err := s.repo.UpdateStatusGuarded(ctx, id, []model.PayoutStatus{model.PayoutPending}, bson.M{
		"status": model.PayoutProcessing,
	})
	if err != nil {
		return s.translateGuardError(err, id, "process")
	}

	s.cfg.Log.Info("Payout moved to processing", "id", id)
	return nil
}

// MarkSent settles the payout: the pending hold clears and the platform
// fee is finally booked against the wallet.
func (s *payoutService) MarkSent(ctx context.Context, id, providerPayoutID string) error {
	payout, err := s.findPayout(ctx, id)
	if err != nil {
		return err
	}
	if payout.Status != model.PayoutProcessing {
		return apperrors.Conflict(fmt.Sprintf("Cannot send a %s payout", payout.Status))
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatusGuarded(sessCtx, id, []model.PayoutStatus{model.PayoutProcessing}, bson.M{
			"status":             model.PayoutSent,
			"provider_payout_id": providerPayoutID,
			"processed_at":       now,
		}); err != nil {
			return s.translateGuardError(err, id, "send")
		}
		return s.wallets.SettlePayout(sessCtx, payout.GuideID, payout.Amount, payout.PlatformFee)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Payout settlement transaction failed", "id", id, "error", err)
		return apperrors.Internal("Failed to settle payout", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            payout.GuideID,
		Type:              model.NotifyPayoutProcessed,
		Title:             "Payout sent",
		Message:           fmt.Sprintf("Your payout of %.2f %s has been sent.", payout.NetAmount, payout.Currency),
		Priority:          model.PriorityHigh,
		RelatedEntityID:   payout.ID,
		RelatedEntityType: "payout",
	})

	s.cfg.Log.Info("Payout sent",
		"id", id,
		"guide_id", payout.GuideID,
		"net_amount", payout.NetAmount,
		"platform_fee", payout.PlatformFee,
	)
	return nil
}

// MarkFailed returns the full requested amount, fee included, to the
// guide's wallet.
func (s *payoutService) MarkFailed(ctx context.Context, id, reason string) error {
	payout, err := s.findPayout(ctx, id)
	if err != nil {
		return err
	}
	if payout.Status != model.PayoutPending && payout.Status != model.PayoutProcessing {
		return apperrors.Conflict(fmt.Sprintf("Cannot fail a %s payout", payout.Status))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatusGuarded(sessCtx, id,
			[]model.PayoutStatus{model.PayoutPending, model.PayoutProcessing}, bson.M{
				"status":         model.PayoutFailed,
				"failure_reason": reason,
			}); err != nil {
			return s.translateGuardError(err, id, "fail")
		}
		return s.wallets.ReversePayout(sessCtx, payout.GuideID, payout.Amount, true)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Payout failure transaction failed", "id", id, "error", err)
		return apperrors.Internal("Failed to fail payout", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            payout.GuideID,
		Type:              model.NotifyPayoutFailed,
		Title:             "Payout failed",
		Message:           "Your payout could not be completed. The amount has been returned to your wallet.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   payout.ID,
		RelatedEntityType: "payout",
	})

	s.cfg.Log.Info("Payout failed", "id", id, "reason", reason)
	return nil
}

func (s *payoutService) Cancel(ctx context.Context, guideID, id string) error {
	payout, err := s.findPayout(ctx, id)
	if err != nil {
		return err
	}
	if payout.GuideID != guideID {
		return apperrors.Forbidden("You do not have access to this payout")
	}
	if payout.Status != model.PayoutPending {
		return apperrors.Conflict("Only pending payouts can be cancelled")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatusGuarded(sessCtx, id, []model.PayoutStatus{model.PayoutPending}, bson.M{
			"status": model.PayoutCancelled,
		}); err != nil {
			return s.translateGuardError(err, id, "cancel")
		}
		return s.wallets.ReversePayout(sessCtx, payout.GuideID, payout.Amount, true)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Payout cancel transaction failed", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel payout", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            payout.GuideID,
		Type:              model.NotifyPayoutCancelled,
		Title:             "Payout cancelled",
		Message:           "Your payout request was cancelled and the amount returned to your wallet.",
		Priority:          model.PriorityMedium,
		RelatedEntityID:   payout.ID,
		RelatedEntityType: "payout",
	})

	s.cfg.Log.Info("Payout cancelled", "id", id, "guide_id", guideID)
	return nil
}

func (s *payoutService) findPayout(ctx context.Context, id string) (*model.Payout, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payout ID cannot be empty")
	}

	payout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, payouterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payout", id)
		}
		if errors.Is(err, payouterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payout ID format")
		}
		s.cfg.Log.Error("Failed to get payout by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payout", err)
	}
	return payout, nil
}

func (s *payoutService) translateGuardError(err error, id, action string) error {
	if errors.Is(err, payouterrors.ErrStaleStatus) {
		return apperrors.Conflict(fmt.Sprintf("Payout status changed, cannot %s", action))
	}
	if errors.Is(err, payouterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid payout ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error("Failed to update payout status", "id", id, "action", action, "error", err)
	return apperrors.Internal("Failed to update payout", err)
}

func fillPayoutStats(stats map[model.PayoutStatus]model.PayoutStatusStats) map[model.PayoutStatus]model.PayoutStatusStats {
	out := make(map[model.PayoutStatus]model.PayoutStatusStats, 5)
	for _, status := range model.AllPayoutStatuses() {
		out[status] = stats[status]
	}
	return out
}

package service

import (
	"context"
	"errors"

	walleterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type WalletService interface {
	GetBalance(ctx context.Context, guideID string) (*model.Wallet, error)
	Credit(ctx context.Context, guideID string, amount float64, paymentID string) error
	DebitForCancellation(ctx context.Context, guideID string, amount float64) error
	MoveToPending(ctx context.Context, guideID string, amount float64) error
	SettlePayout(ctx context.Context, guideID string, amount, fee float64) error
	ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error
	CreditPayable(ctx context.Context, guideID string, amount float64) error
}

type walletService struct {
	repo repository.WalletRepository
	cfg  *config.Config
}

func NewWalletService(repo repository.WalletRepository, cfg *config.Config) WalletService {
	return &walletService{
		repo: repo,
		cfg:  cfg,
	}
}

// GetBalance never 404s: a guide who has not earned yet gets a zero-value
// wallet.
func (s *walletService) GetBalance(ctx context.Context, guideID string) (*model.Wallet, error) {
	if guideID == "" {
		return nil, apperrors.InvalidInput("Guide ID cannot be empty")
	}

	wallet, err := s.repo.FindByGuide(ctx, guideID)
	if err != nil {
		if errors.Is(err, walleterrors.ErrNotFound) {
			return &model.Wallet{GuideID: guideID, PaymentIDs: []string{}}, nil
		}
		s.cfg.Log.Error("Failed to load wallet", "guide_id", guideID, "error", err)
		return nil, apperrors.Internal("Failed to load wallet", err)
	}
	return wallet, nil
}

func (s *walletService) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	if err := s.repo.Credit(ctx, guideID, amount, paymentID); err != nil {
		s.cfg.Log.Error("Failed to credit wallet",
			"guide_id", guideID,
			"amount", amount,
			"payment_id", paymentID,
			"error", err,
		)
		return apperrors.Internal("Failed to credit wallet", err)
	}

	s.cfg.Log.Info("Wallet credited", "guide_id", guideID, "amount", amount, "payment_id", paymentID)
	return nil
}

func (s *walletService) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	err := s.repo.DebitForCancellation(ctx, guideID, amount)
	if err != nil {
		// A missing wallet means nothing was ever credited; the clawback
		// is a no-op, not a failure.
		if errors.Is(err, walleterrors.ErrNotFound) {
			s.cfg.Log.Warn("Clawback skipped, wallet does not exist", "guide_id", guideID, "amount", amount)
			return nil
		}
		s.cfg.Log.Error("Failed to claw back wallet funds", "guide_id", guideID, "amount", amount, "error", err)
		return apperrors.Internal("Failed to adjust wallet", err)
	}

	s.cfg.Log.Info("Wallet clawback applied", "guide_id", guideID, "amount", amount)
	return nil
}

func (s *walletService) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	err := s.repo.MoveToPending(ctx, guideID, amount)
	if err != nil {
		if errors.Is(err, walleterrors.ErrInsufficientFunds) {
			return apperrors.InvalidInput("Insufficient wallet balance for this payout")
		}
		s.cfg.Log.Error("Failed to move funds to pending", "guide_id", guideID, "amount", amount, "error", err)
		return apperrors.Internal("Failed to reserve payout funds", err)
	}
	return nil
}

func (s *walletService) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	if err := s.repo.SettlePayout(ctx, guideID, amount, fee); err != nil {
		s.cfg.Log.Error("Failed to settle payout", "guide_id", guideID, "amount", amount, "fee", fee, "error", err)
		return apperrors.Internal("Failed to settle payout", err)
	}
	return nil
}

func (s *walletService) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	if err := s.repo.ReversePayout(ctx, guideID, amount, restorePayable); err != nil {
		s.cfg.Log.Error("Failed to reverse payout", "guide_id", guideID, "amount", amount, "error", err)
		return apperrors.Internal("Failed to reverse payout", err)
	}
	return nil
}

func (s *walletService) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	if err := s.repo.CreditPayable(ctx, guideID, amount); err != nil {
		s.cfg.Log.Error("Failed to credit payable balance", "guide_id", guideID, "amount", amount, "error", err)
		return apperrors.Internal("Failed to credit payable balance", err)
	}
	return nil
}

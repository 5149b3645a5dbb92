package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const testGuideID = "64f1b2c3d4e5f6a7b8c9d0a1"

// ledgerMock mirrors the repository's conditional-$inc arithmetic on a
// single in-memory wallet so balance invariants can be asserted across
// call sequences.
type ledgerMock struct {
	wallet      *model.Wallet
	forcedError error
}

func (m *ledgerMock) FindByGuide(ctx context.Context, guideID string) (*model.Wallet, error) {
	if m.wallet == nil {
		return nil, walleterrors.ErrNotFound
	}
	return m.wallet, nil
}

func (m *ledgerMock) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	if m.wallet == nil {
		m.wallet = &model.Wallet{GuideID: guideID, PaymentIDs: []string{}}
	}
	m.wallet.Balance += amount
	m.wallet.TotalEarned += amount
	m.wallet.PaymentIDs = append(m.wallet.PaymentIDs, paymentID)
	return nil
}

func (m *ledgerMock) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	if m.wallet == nil {
		return walleterrors.ErrNotFound
	}
	m.wallet.Balance -= amount
	m.wallet.TotalEarned -= amount
	return nil
}

func (m *ledgerMock) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	if m.wallet == nil || m.wallet.Balance < amount {
		return walleterrors.ErrInsufficientFunds
	}
	m.wallet.Balance -= amount
	m.wallet.PendingBalance += amount
	return nil
}

func (m *ledgerMock) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	m.wallet.PendingBalance -= amount
	m.wallet.TotalPlatformFee += fee
	m.wallet.TotalReceived += amount - fee
	return nil
}

func (m *ledgerMock) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	m.wallet.PendingBalance -= amount
	if restorePayable {
		m.wallet.PayableBalance += amount
	} else {
		m.wallet.Balance += amount
	}
	return nil
}

func (m *ledgerMock) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	if m.forcedError != nil {
		return m.forcedError
	}
	if m.wallet == nil {
		m.wallet = &model.Wallet{GuideID: guideID, PaymentIDs: []string{}}
	}
	m.wallet.PayableBalance += amount
	return nil
}

func newTestService(repo *ledgerMock) WalletService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}

	return NewWalletService(repo, cfg)
}

func TestGetBalance_MissingWalletReturnsZeroValue(t *testing.T) {
	svc := newTestService(&ledgerMock{})

	wallet, err := svc.GetBalance(context.Background(), testGuideID)
	require.NoError(t, err)

	assert.Equal(t, testGuideID, wallet.GuideID)
	assert.Zero(t, wallet.Balance)
	assert.Zero(t, wallet.TotalEarned)
	assert.NotNil(t, wallet.PaymentIDs)
}

func TestGetBalance_EmptyGuideIDRejected(t *testing.T) {
	svc := newTestService(&ledgerMock{})

	_, err := svc.GetBalance(context.Background(), "")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestMoveToPending_InsufficientBalanceBecomesInvalidInput(t *testing.T) {
	repo := &ledgerMock{wallet: &model.Wallet{GuideID: testGuideID, Balance: 50}}
	svc := newTestService(repo)

	err := svc.MoveToPending(context.Background(), testGuideID, 100)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
	assert.Equal(t, 50.0, repo.wallet.Balance)
	assert.Zero(t, repo.wallet.PendingBalance)
}

func TestDebitForCancellation_MissingWalletIsNoop(t *testing.T) {
	svc := newTestService(&ledgerMock{})

	err := svc.DebitForCancellation(context.Background(), testGuideID, 75)
	assert.NoError(t, err)
}

func TestSettledPayoutsSumToTotalReceived(t *testing.T) {
	repo := &ledgerMock{}
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, testGuideID, 200, "pay-1"))
	require.NoError(t, svc.Credit(ctx, testGuideID, 150, "pay-2"))

	// Two payouts are sent, a third is reversed after processing fails.
	require.NoError(t, svc.MoveToPending(ctx, testGuideID, 150))
	require.NoError(t, svc.SettlePayout(ctx, testGuideID, 150, 22.5))

	require.NoError(t, svc.MoveToPending(ctx, testGuideID, 100))
	require.NoError(t, svc.SettlePayout(ctx, testGuideID, 100, 15))

	require.NoError(t, svc.MoveToPending(ctx, testGuideID, 50))
	require.NoError(t, svc.ReversePayout(ctx, testGuideID, 50, false))

	wallet := repo.wallet
	assert.InDelta(t, 127.5+85, wallet.TotalReceived, 0.001)
	assert.InDelta(t, 37.5, wallet.TotalPlatformFee, 0.001)
	assert.Zero(t, wallet.PendingBalance)
	assert.InDelta(t, 100, wallet.Balance, 0.001)
	assert.InDelta(t, 350, wallet.TotalEarned, 0.001)
}

func TestCredit_RepositoryFailureBecomesInternal(t *testing.T) {
	repo := &ledgerMock{forcedError: assert.AnError}
	svc := newTestService(repo)

	err := svc.Credit(context.Background(), testGuideID, 100, "pay-1")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInternal, appErr.Code)
}

func TestReversePayout_CanRestoreToPayableBalance(t *testing.T) {
	repo := &ledgerMock{wallet: &model.Wallet{
		GuideID:        testGuideID,
		PendingBalance: 80,
	}}
	svc := newTestService(repo)

	err := svc.ReversePayout(context.Background(), testGuideID, 80, true)
	require.NoError(t, err)

	assert.Zero(t, repo.wallet.PendingBalance)
	assert.Equal(t, 80.0, repo.wallet.PayableBalance)
	assert.Zero(t, repo.wallet.Balance)
}

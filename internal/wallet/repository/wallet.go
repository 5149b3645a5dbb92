package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	walleterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	CollectionName = "Wallets"
)

type mongoWalletRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// WalletRepository holds every balance mutation behind an atomic
// conditional update. Callers never read-modify-write wallet fields.
type WalletRepository interface {
	FindByGuide(ctx context.Context, guideID string) (*model.Wallet, error)
	Credit(ctx context.Context, guideID string, amount float64, paymentID string) error
	DebitForCancellation(ctx context.Context, guideID string, amount float64) error
	MoveToPending(ctx context.Context, guideID string, amount float64) error
	SettlePayout(ctx context.Context, guideID string, amount, fee float64) error
	ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error
	CreditPayable(ctx context.Context, guideID string, amount float64) error
}

func NewMongoWalletRepository(cfg *config.Config) WalletRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoWalletRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWalletRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoWalletRepository) FindByGuide(ctx context.Context, guideID string) (*model.Wallet, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wallet model.Wallet
	err := r.collection.FindOne(ctx, bson.M{"guide_id": guideID}).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", walleterrors.ErrNotFound, guideID)
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}

	return &wallet, nil
}

// Credit records a successful payment: the full amount lands on the
// balance; the platform fee is deducted later, at payout. Upserts so the
// first payment creates the wallet.
func (r *mongoWalletRepository) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$inc": bson.M{
			"balance":        amount,
			"total_earned":   amount,
			"total_received": amount,
		},
		"$push":        bson.M{"payment_ids": paymentID},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"guide_id": guideID, "created_at": now},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"guide_id": guideID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

// DebitForCancellation claws back the full booked amount after a paid
// booking is cancelled. The balance clamps at zero; the ledger totals keep
// the original figures for reporting.
func (r *mongoWalletRepository) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"balance":    bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$balance", amount}}}},
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"guide_id": guideID}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", walleterrors.ErrNotFound, guideID)
	}
	return nil
}

// MoveToPending parks a payout request's amount. The filter requires
// sufficient balance, so two concurrent requests can never both succeed on
// the same funds.
func (r *mongoWalletRepository) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"guide_id": guideID,
		"balance":  bson.M{"$gte": amount},
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"balance":         bson.M{"$subtract": bson.A{"$balance", amount}},
			"pending_balance": bson.M{"$add": bson.A{"$pending_balance", amount}},
			"payable_balance": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$payable_balance", amount}}}},
			"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, pipeline)
	if err != nil {
		return fmt.Errorf("failed to move funds to pending: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", walleterrors.ErrInsufficientFunds, guideID)
	}
	return nil
}

// SettlePayout finalizes a sent payout: the pending amount leaves the
// wallet and the deferred platform fee is recorded.
func (r *mongoWalletRepository) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"pending_balance":    bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$pending_balance", amount}}}},
			"total_platform_fee": bson.M{"$add": bson.A{"$total_platform_fee", fee}},
			"updated_at":         time.Now().UTC().Truncate(time.Millisecond),
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"guide_id": guideID}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to settle payout: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", walleterrors.ErrNotFound, guideID)
	}
	return nil
}

// ReversePayout puts a failed or cancelled payout's full amount back on
// the balance.
func (r *mongoWalletRepository) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields := bson.M{
		"pending_balance": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$pending_balance", amount}}}},
		"balance":         bson.M{"$add": bson.A{"$balance", amount}},
		"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
	}
	if restorePayable {
		fields["payable_balance"] = bson.M{"$add": bson.A{"$payable_balance", amount}}
	}
	pipeline := mongo.Pipeline{{{Key: "$set", Value: fields}}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"guide_id": guideID}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to reverse payout: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", walleterrors.ErrNotFound, guideID)
	}
	return nil
}

// CreditPayable releases completed-tour earnings for withdrawal. Runs
// inside the completion transaction, hence the upsert for guides without
// a wallet yet.
func (r *mongoWalletRepository) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$inc":         bson.M{"payable_balance": amount},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"guide_id": guideID, "created_at": now},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"guide_id": guideID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to credit payable balance: %w", err)
	}
	return nil
}

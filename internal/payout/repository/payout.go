package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	payouterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	CollectionName = "Payouts"
)

type PayoutFilter struct {
	GuideID string
	Status  model.PayoutStatus
}

func (f PayoutFilter) build() bson.M {
	filter := bson.M{}
	if f.GuideID != "" {
		filter["guide_id"] = f.GuideID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

type mongoPayoutRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type PayoutRepository interface {
	Create(ctx context.Context, payout *model.Payout) error
	FindByID(ctx context.Context, id string) (*model.Payout, error)
	FindAll(ctx context.Context, filter PayoutFilter, limit, offset int) ([]*model.Payout, error)
	Count(ctx context.Context, filter PayoutFilter) (int64, error)
	CountPendingByGuide(ctx context.Context, guideID string) (int64, error)
	StatsByStatus(ctx context.Context, filter PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error)
	UpdateStatusGuarded(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoPayoutRepository(cfg *config.Config) PayoutRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPayoutRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoPayoutRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoPayoutRepository) Create(ctx context.Context, payout *model.Payout) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	payout.RequestedAt = now
	payout.CreatedAt = now
	payout.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, payout)
	if err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		payout.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPayoutRepository) FindByID(ctx context.Context, id string) (*model.Payout, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", payouterrors.ErrInvalidID, id)
	}

	var payout model.Payout
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&payout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", payouterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find payout: %w", err)
	}

	return &payout, nil
}

func (r *mongoPayoutRepository) FindAll(ctx context.Context, filter PayoutFilter, limit, offset int) ([]*model.Payout, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "requested_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter.build(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts: %w", err)
	}
	defer cursor.Close(ctx)

	var payouts []*model.Payout
	if err = cursor.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts: %w", err)
	}
	return payouts, nil
}

func (r *mongoPayoutRepository) Count(ctx context.Context, filter PayoutFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.build())
	if err != nil {
		return 0, fmt.Errorf("failed to count payouts: %w", err)
	}
	return count, nil
}

// CountPendingByGuide counts a guide's unfinished payouts; a guide may
// hold at most one in-flight request at a time.
func (r *mongoPayoutRepository) CountPendingByGuide(ctx context.Context, guideID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"guide_id": guideID,
		"status":   bson.M{"$in": []model.PayoutStatus{model.PayoutPending, model.PayoutProcessing}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending payouts: %w", err)
	}
	return count, nil
}

// StatsByStatus sums net amounts per status. The status filter is
// ignored so the breakdown always spans every status.
func (r *mongoPayoutRepository) StatsByStatus(ctx context.Context, filter PayoutFilter) (map[model.PayoutStatus]model.PayoutStatusStats, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	match := bson.M{}
	if filter.GuideID != "" {
		match["guide_id"] = filter.GuideID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$status",
			"totalAmount": bson.M{"$sum": "$net_amount"},
			"count":       bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payout stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status      model.PayoutStatus `bson:"_id"`
		TotalAmount float64            `bson:"totalAmount"`
		Count       int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode payout stats: %w", err)
	}

	stats := make(map[model.PayoutStatus]model.PayoutStatusStats, len(rows))
	for _, row := range rows {
		stats[row.Status] = model.PayoutStatusStats{TotalAmount: row.TotalAmount, Count: row.Count}
	}
	return stats, nil
}

// UpdateStatusGuarded applies updates only while the payout still sits
// in one of the expected statuses.
func (r *mongoPayoutRepository) UpdateStatusGuarded(ctx context.Context, id string, from []model.PayoutStatus, updates bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", payouterrors.ErrInvalidID, id)
	}

	updates["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$in": from},
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", payouterrors.ErrStaleStatus, id)
	}
	return nil
}

func (r *mongoPayoutRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

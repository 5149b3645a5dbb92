package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tourerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	CollectionName = "Tours"
)

// TourFilter narrows the public listing. City matches case-insensitively.
type TourFilter struct {
	City     string
	Category string
	GuideID  string
}

type mongoTourRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type TourRepository interface {
	Create(ctx context.Context, tour *model.Tour) error
	FindByID(ctx context.Context, id string) (*model.Tour, error)
	FindAll(ctx context.Context, filter TourFilter, limit, offset int) ([]*model.Tour, error)
	Count(ctx context.Context, filter TourFilter) (int64, error)
	Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ApplyRatingDelta(ctx context.Context, id string, deltaSum float64, deltaCount int64) error
}

func NewMongoTourRepository(cfg *config.Config) TourRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTourRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTourRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTourRepository) Create(ctx context.Context, tour *model.Tour) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	tour.CreatedAt = now
	tour.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, tour)
	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		tour.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTourRepository) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tourerrors.ErrInvalidID, id)
	}

	var tour model.Tour
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tourerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}

	return &tour, nil
}

func escapeRegexSpecialChars(s string) string {
	specialChars := regexp.MustCompile(`[.*+?^$()[\]{}|\\]`)
	return specialChars.ReplaceAllStringFunc(s, func(match string) string {
		return "\\" + match
	})
}

func (r *mongoTourRepository) buildFilter(filter TourFilter) bson.M {
	query := bson.M{}
	if filter.GuideID != "" {
		query["guide_id"] = filter.GuideID
	} else {
		query["is_active"] = true
	}
	if filter.City != "" {
		query["city"] = bson.M{"$regex": escapeRegexSpecialChars(filter.City), "$options": "i"}
	}
	if filter.Category != "" {
		query["category"] = bson.M{"$regex": "^" + escapeRegexSpecialChars(filter.Category) + "$", "$options": "i"}
	}
	return query
}

func (r *mongoTourRepository) FindAll(ctx context.Context, filter TourFilter, limit, offset int) ([]*model.Tour, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, r.buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer cursor.Close(ctx)

	var tours []*model.Tour
	if err = cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("failed to decode tours: %w", err)
	}
	return tours, nil
}

func (r *mongoTourRepository) Count(ctx context.Context, filter TourFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count tours: %w", err)
	}
	return count, nil
}

func (r *mongoTourRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tourerrors.ErrInvalidID, id)
	}

	updates["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updates})
	if err != nil {
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", tourerrors.ErrNotFound, id)
	}
	return result, nil
}

func (r *mongoTourRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tourerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", tourerrors.ErrNotFound, id)
	}
	return nil
}

// ApplyRatingDelta adjusts the incremental rating aggregates and rederives
// the rounded average in the same update, so concurrent reviews never lose
// increments.
func (r *mongoTourRepository) ApplyRatingDelta(ctx context.Context, id string, deltaSum float64, deltaCount int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tourerrors.ErrInvalidID, id)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"rating_sum":   bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$rating_sum", 0}}, deltaSum}},
			"review_count": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$review_count", 0}}, deltaCount}},
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		}}},
		{{Key: "$set", Value: bson.M{
			"average_rating": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$review_count", 0}},
				bson.M{"$round": bson.A{bson.M{"$divide": bson.A{"$rating_sum", "$review_count"}}, 1}},
				0,
			}},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to apply rating delta: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tourerrors.ErrNotFound, id)
	}
	return nil
}

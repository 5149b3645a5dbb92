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

	availabilityerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	CollectionName = "Availabilities"
)

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AvailabilityRepository interface {
	Create(ctx context.Context, av *model.Availability) error
	FindByID(ctx context.Context, id string) (*model.Availability, error)
	FindByGuideAndDate(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error)
	FindByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, error)
	CountByGuide(ctx context.Context, guideID string) (int64, error)
	FindOpenInWindow(ctx context.Context, from, to time.Time, limit, offset int) ([]*model.Availability, error)
	CountOpenInWindow(ctx context.Context, from, to time.Time) (int64, error)
	Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ReserveGuests(ctx context.Context, id, tourID string, guests int) error
	ReleaseGuests(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error
	SweepExpired(ctx context.Context, before time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function.
func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAvailabilityRepository) Create(ctx context.Context, av *model.Availability) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	av.CreatedAt = now
	av.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, av)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		av.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var av model.Availability
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&av)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}

	return &av, nil
}

func (r *mongoAvailabilityRepository) FindByGuideAndDate(ctx context.Context, guideID string, date time.Time) ([]*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	dayStart := date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"guide_id": guideID,
		"specific_date": bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.AddDate(0, 0, 1),
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query availabilities: %w", err)
	}
	defer cursor.Close(ctx)

	var availabilities []*model.Availability
	if err = cursor.All(ctx, &availabilities); err != nil {
		return nil, fmt.Errorf("failed to decode availabilities: %w", err)
	}
	return availabilities, nil
}

func (r *mongoAvailabilityRepository) FindByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "specific_date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"guide_id": guideID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availabilities: %w", err)
	}
	defer cursor.Close(ctx)

	var availabilities []*model.Availability
	if err = cursor.All(ctx, &availabilities); err != nil {
		return nil, fmt.Errorf("failed to decode availabilities: %w", err)
	}
	return availabilities, nil
}

func (r *mongoAvailabilityRepository) CountByGuide(ctx context.Context, guideID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"guide_id": guideID})
	if err != nil {
		return 0, fmt.Errorf("failed to count availabilities: %w", err)
	}
	return count, nil
}

func (r *mongoAvailabilityRepository) FindOpenInWindow(ctx context.Context, from, to time.Time, limit, offset int) ([]*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "specific_date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, r.openWindowFilter(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query open availabilities: %w", err)
	}
	defer cursor.Close(ctx)

	var availabilities []*model.Availability
	if err = cursor.All(ctx, &availabilities); err != nil {
		return nil, fmt.Errorf("failed to decode availabilities: %w", err)
	}
	return availabilities, nil
}

func (r *mongoAvailabilityRepository) CountOpenInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.openWindowFilter(from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count open availabilities: %w", err)
	}
	return count, nil
}

func (r *mongoAvailabilityRepository) openWindowFilter(from, to time.Time) bson.M {
	return bson.M{
		"is_available":  true,
		"specific_date": bson.M{"$gte": from, "$lt": to},
		"$expr": bson.M{
			"$lt": bson.A{"$todays_tourist.count", "$todays_tourist.max_guests"},
		},
	}
}

func (r *mongoAvailabilityRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	updates["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updates})
	if err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	return result, nil
}

func (r *mongoAvailabilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	return nil
}

// ReserveGuests atomically adds guests to a slot. The filter only matches
// when the slot is open, bound to the same tour (or no tour yet), and has
// room; a non-matching update is diagnosed with a follow-up read so the
// caller gets the precise reason.
func (r *mongoAvailabilityRepository) ReserveGuests(ctx context.Context, id, tourID string, guests int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":          objectID,
		"is_available": true,
		"$or": bson.A{
			bson.M{"todays_tourist.tour_id": tourID},
			bson.M{"todays_tourist.tour_id": bson.M{"$in": bson.A{"", nil}}},
			bson.M{"todays_tourist.tour_id": bson.M{"$exists": false}},
		},
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$todays_tourist.count", guests}},
				"$todays_tourist.max_guests",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"todays_tourist.count": guests},
		"$set": bson.M{
			"todays_tourist.is_booked": true,
			"todays_tourist.tour_id":   tourID,
			"updated_at":               time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if result.ModifiedCount > 0 {
		return nil
	}

	av, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !av.IsAvailable {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	if av.Booking.TourID != "" && av.Booking.TourID != tourID {
		return availabilityerrors.ErrSlotTaken
	}
	return fmt.Errorf("%w: %d remaining", availabilityerrors.ErrCapacity, av.Booking.Remaining())
}

// ReleaseGuests gives capacity back after a cancellation. The slot is
// addressed by its natural key because the document may have been
// replaced since booking. Releasing below zero clamps; a fully drained
// slot is unbound from its tour.
func (r *mongoAvailabilityRepository) ReleaseGuests(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	dayStart := date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"guide_id":   guideID,
		"start_time": startTime,
		"specific_date": bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.AddDate(0, 0, 1),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"todays_tourist.count": -guests},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	})
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}

	// Clamp and unbind in one pass; matches only drained slots so the
	// release stays idempotent.
	drained := filter
	drained["todays_tourist.count"] = bson.M{"$lte": 0}
	_, err = r.collection.UpdateOne(ctx, drained, bson.M{
		"$set": bson.M{
			"todays_tourist.count":     0,
			"todays_tourist.is_booked": false,
			"todays_tourist.tour_id":   "",
			"updated_at":               time.Now().UTC().Truncate(time.Millisecond),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to reset drained slot: %w", err)
	}
	return nil
}

// SweepExpired deletes availabilities dated before the cutoff. Safe to
// run repeatedly.
func (r *mongoAvailabilityRepository) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"specific_date": bson.M{"$lt": before.UTC().Truncate(24 * time.Hour)},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired availabilities: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

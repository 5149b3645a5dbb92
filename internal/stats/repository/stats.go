package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	paymentrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/repository"
	reviewrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/review/repository"
	tourrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/repository"
	userrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/user/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

// BookingScope narrows booking breakdowns to one side of the marketplace.
// Zero value means platform-wide.
type BookingScope struct {
	GuideID   string
	TouristID string
}

func (s BookingScope) match() bson.M {
	match := bson.M{}
	if s.GuideID != "" {
		match["guide_id"] = s.GuideID
	}
	if s.TouristID != "" {
		match["tourist_id"] = s.TouristID
	}
	return match
}

// ReviewScope narrows review summaries. Zero value means platform-wide.
type ReviewScope struct {
	GuideID string
	TourID  string
}

// StatsRepository runs the read-only aggregation pipelines behind the
// dashboards. It never writes.
type StatsRepository interface {
	CountUsersByRole(ctx context.Context) (map[model.Role]int64, error)
	CountTours(ctx context.Context) (total, active int64, err error)
	CountBookingsByStatus(ctx context.Context, scope BookingScope) (map[model.BookingStatus]int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
	MonthlyRevenue(ctx context.Context, months int) ([]model.MonthlyRevenuePoint, error)
	GuideMonthlyRevenue(ctx context.Context, guideID string, months int) ([]model.MonthlyRevenuePoint, error)
	TopGuides(ctx context.Context, limit int) ([]model.GuideLeaderboardEntry, error)
	PopularTours(ctx context.Context, limit int) ([]model.PopularTourEntry, error)
	ReviewSummary(ctx context.Context, scope ReviewScope) (model.ReviewSummary, error)
	TouristSpend(ctx context.Context, touristID string) (total float64, count int64, err error)
}

type mongoStatsRepository struct {
	cfg      *config.Config
	users    *mongo.Collection
	tours    *mongo.Collection
	bookings *mongo.Collection
	payments *mongo.Collection
	reviews  *mongo.Collection
}

func NewMongoStatsRepository(cfg *config.Config) StatsRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoStatsRepository{
		cfg:      cfg,
		users:    db.Collection(userrepo.CollectionName),
		tours:    db.Collection(tourrepo.CollectionName),
		bookings: db.Collection(bookingrepo.CollectionName),
		payments: db.Collection(paymentrepo.CollectionName),
		reviews:  db.Collection(reviewrepo.CollectionName),
	}
}

func (r *mongoStatsRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoStatsRepository) CountUsersByRole(ctx context.Context) (map[model.Role]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$role",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate users by role: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  model.Role `bson:"_id"`
		Count int64      `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode user role counts: %w", err)
	}

	counts := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *mongoStatsRepository) CountTours(ctx context.Context) (int64, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	total, err := r.tours.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tours: %w", err)
	}
	active, err := r.tours.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active tours: %w", err)
	}
	return total, active, nil
}

func (r *mongoStatsRepository) CountBookingsByStatus(ctx context.Context, scope BookingScope) (map[model.BookingStatus]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scope.match()}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings by status: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status model.BookingStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking status counts: %w", err)
	}

	counts := make(map[model.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TotalRevenue sums all PAID payments. Refunded payments moved out of the
// PAID status, so they drop off the total automatically.
func (r *mongoStatsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": model.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate total revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode total revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

func (r *mongoStatsRepository) MonthlyRevenue(ctx context.Context, months int) ([]model.MonthlyRevenuePoint, error) {
	since := monthsAgo(months)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     model.PaymentPaid,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"revenue": bson.M{"$sum": "$amount"},
			"count":   bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	return r.revenueSeries(ctx, r.payments, pipeline)
}

// GuideMonthlyRevenue reads from bookings because payment documents carry
// no guide reference.
func (r *mongoStatsRepository) GuideMonthlyRevenue(ctx context.Context, guideID string, months int) ([]model.MonthlyRevenuePoint, error) {
	since := monthsAgo(months)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"guide_id":       guideID,
			"payment_status": model.PaymentStateSucceeded,
			"created_at":     bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"revenue": bson.M{"$sum": "$amount_total"},
			"count":   bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	return r.revenueSeries(ctx, r.bookings, pipeline)
}

func (r *mongoStatsRepository) revenueSeries(ctx context.Context, collection *mongo.Collection, pipeline mongo.Pipeline) ([]model.MonthlyRevenuePoint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue series: %w", err)
	}
	defer cursor.Close(ctx)

	var points []model.MonthlyRevenuePoint
	if err = cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode revenue series: %w", err)
	}
	return points, nil
}

func (r *mongoStatsRepository) TopGuides(ctx context.Context, limit int) ([]model.GuideLeaderboardEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment_status": model.PaymentStateSucceeded}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$guide_id",
			"revenue":      bson.M{"$sum": "$amount_total"},
			"bookingCount": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"revenue": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top guides: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []model.GuideLeaderboardEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode top guides: %w", err)
	}
	return entries, nil
}

func (r *mongoStatsRepository) PopularTours(ctx context.Context, limit int) ([]model.PopularTourEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          "$tour_id",
			"bookingCount": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"bookingCount": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular tours: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []model.PopularTourEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode popular tours: %w", err)
	}
	return entries, nil
}

func (r *mongoStatsRepository) ReviewSummary(ctx context.Context, scope ReviewScope) (model.ReviewSummary, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	match := bson.M{}
	if scope.GuideID != "" {
		match["guide_id"] = scope.GuideID
		match["target"] = model.ReviewTargetGuide
	}
	if scope.TourID != "" {
		match["tour_id"] = scope.TourID
		match["target"] = model.ReviewTargetTour
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"count":         bson.M{"$sum": 1},
			"averageRating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return model.ReviewSummary{}, fmt.Errorf("failed to aggregate review summary: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []model.ReviewSummary
	if err = cursor.All(ctx, &rows); err != nil {
		return model.ReviewSummary{}, fmt.Errorf("failed to decode review summary: %w", err)
	}
	if len(rows) == 0 {
		return model.ReviewSummary{}, nil
	}
	return rows[0], nil
}

func (r *mongoStatsRepository) TouristSpend(ctx context.Context, touristID string) (float64, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"customer_id": touristID,
			"status":      model.PaymentPaid,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate tourist spend: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode tourist spend: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Count, nil
}

func monthsAgo(months int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months+1, 0)
}

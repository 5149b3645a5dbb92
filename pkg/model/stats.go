package model

// MonthlyRevenuePoint is one bucket of the PAID-payments revenue series,
// keyed by "YYYY-MM".
type MonthlyRevenuePoint struct {
	Month   string  `json:"month" bson:"_id"`
	Revenue float64 `json:"revenue" bson:"revenue"`
	Count   int64   `json:"count" bson:"count"`
}

type GuideLeaderboardEntry struct {
	GuideID      string  `json:"guideId" bson:"_id"`
	Revenue      float64 `json:"revenue" bson:"revenue"`
	BookingCount int64   `json:"bookingCount" bson:"bookingCount"`
}

type PopularTourEntry struct {
	TourID       string `json:"tourId" bson:"_id"`
	BookingCount int64  `json:"bookingCount" bson:"bookingCount"`
}

type ReviewSummary struct {
	Count         int64   `json:"count" bson:"count"`
	AverageRating float64 `json:"averageRating" bson:"averageRating"`
}

// AdminDashboard is the platform-wide read model. It is assembled from
// aggregation pipelines and cached, so staleness up to the cache TTL is
// expected.
type AdminDashboard struct {
	UsersByRole      map[Role]int64                     `json:"usersByRole"`
	TotalTours       int64                              `json:"totalTours"`
	ActiveTours      int64                              `json:"activeTours"`
	BookingsByStatus map[BookingStatus]int64            `json:"bookingsByStatus"`
	TotalRevenue     float64                            `json:"totalRevenue"`
	PayoutsByStatus  map[PayoutStatus]PayoutStatusStats `json:"payoutsByStatus"`
	Reviews          ReviewSummary                      `json:"reviews"`
	MonthlyRevenue   []MonthlyRevenuePoint              `json:"monthlyRevenue"`
	TopGuides        []GuideLeaderboardEntry            `json:"topGuides"`
	PopularTours     []PopularTourEntry                 `json:"popularTours"`
}

type GuideDashboard struct {
	BookingsByStatus map[BookingStatus]int64 `json:"bookingsByStatus"`
	TotalEarned      float64                 `json:"totalEarned"`
	PayableBalance   float64                 `json:"payableBalance"`
	PendingBalance   float64                 `json:"pendingBalance"`
	TotalReceived    float64                 `json:"totalReceived"`
	Reviews          ReviewSummary           `json:"reviews"`
	MonthlyRevenue   []MonthlyRevenuePoint   `json:"monthlyRevenue"`
}

type TouristDashboard struct {
	BookingsByStatus map[BookingStatus]int64 `json:"bookingsByStatus"`
	TotalSpent       float64                 `json:"totalSpent"`
	PaymentCount     int64                   `json:"paymentCount"`
}

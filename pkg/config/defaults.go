package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "local_guide"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "5000"

	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultIdempotencyTTL  = 24 * time.Hour
	DefaultMaxRequestSize  = 1 << 20

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute

	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultStatsCacheTTL = 5 * time.Minute

	DefaultGatewayBaseURL  = "https://sandbox.sslcommerz.com"
	DefaultPaymentHookBase = "http://localhost:5000"

	DefaultAvailabilityHorizonDays = 7
	DefaultSweepInterval           = 24 * time.Hour
	DefaultOutboxPollInterval      = 5 * time.Second
	DefaultOutboxBatchSize         = 50

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100
)

// NormalizePaginationLimit clamps a requested page size to the allowed range.
func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

// NormalizePage floors the requested page at 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

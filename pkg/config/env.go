package config

import (
	"os"
	"strconv"
	"time"
)

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort = "PORT"

	EnvEnvironment = "ENVIRONMENT"
	EnvLogLevel    = "LOG_LEVEL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL  = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize  = "MAX_REQUEST_SIZE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvJWTAccessSecret  = "JWT_ACCESS_SECRET"
	EnvJWTRefreshSecret = "JWT_REFRESH_SECRET"
	EnvAccessTokenTTL   = "ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL  = "REFRESH_TOKEN_TTL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvStatsCacheTTL = "STATS_CACHE_TTL"

	EnvGatewayBaseURL  = "PAYMENT_GATEWAY_BASE_URL"
	EnvGatewayStoreID  = "PAYMENT_GATEWAY_STORE_ID"
	EnvGatewayStorePwd = "PAYMENT_GATEWAY_STORE_PASSWORD"
	EnvPaymentHookBase = "PAYMENT_CALLBACK_BASE_URL"

	EnvAvailabilityHorizonDays = "AVAILABILITY_HORIZON_DAYS"
	EnvSweepInterval           = "AVAILABILITY_SWEEP_INTERVAL"
	EnvOutboxPollInterval      = "OUTBOX_POLL_INTERVAL"
	EnvOutboxBatchSize         = "OUTBOX_BATCH_SIZE"
)

func getEnvStr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

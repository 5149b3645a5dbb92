package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/client"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port        string
	Environment string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	IdempotencyTTL  time.Duration
	MaxRequestSize  int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	GatewayBaseURL       string
	GatewayStoreID       string
	GatewayStorePassword string
	PaymentCallbackBase  string

	AvailabilityHorizonDays int
	SweepInterval           time.Duration
	OutboxPollInterval      time.Duration
	OutboxBatchSize         int

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from the environment. A .env file is honored
// when present; real environment variables win.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:        getEnvStr(EnvPort, DefaultPort),
		Environment: getEnvStr(EnvEnvironment, DefaultEnvironment),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL:  getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize:  getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		JWTAccessSecret:  getEnvStr(EnvJWTAccessSecret, ""),
		JWTRefreshSecret: getEnvStr(EnvJWTRefreshSecret, ""),
		AccessTokenTTL:   getEnvDuration(EnvAccessTokenTTL, DefaultAccessTokenTTL),
		RefreshTokenTTL:  getEnvDuration(EnvRefreshTokenTTL, DefaultRefreshTokenTTL),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),
		StatsCacheTTL: getEnvDuration(EnvStatsCacheTTL, DefaultStatsCacheTTL),

		GatewayBaseURL:       getEnvStr(EnvGatewayBaseURL, DefaultGatewayBaseURL),
		GatewayStoreID:       getEnvStr(EnvGatewayStoreID, ""),
		GatewayStorePassword: getEnvStr(EnvGatewayStorePwd, ""),
		PaymentCallbackBase:  getEnvStr(EnvPaymentHookBase, DefaultPaymentHookBase),

		AvailabilityHorizonDays: getEnvNum(EnvAvailabilityHorizonDays, DefaultAvailabilityHorizonDays),
		SweepInterval:           getEnvDuration(EnvSweepInterval, DefaultSweepInterval),
		OutboxPollInterval:      getEnvDuration(EnvOutboxPollInterval, DefaultOutboxPollInterval),
		OutboxBatchSize:         getEnvNum(EnvOutboxBatchSize, DefaultOutboxBatchSize),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == "production"
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		problems = append(problems, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":   cfg.MongoConnTimeout,
		"ReadTimeout":        cfg.ReadTimeout,
		"WriteTimeout":       cfg.WriteTimeout,
		"IdleTimeout":        cfg.IdleTimeout,
		"ShutdownTimeout":    cfg.ShutdownTimeout,
		"RequestTimeout":     cfg.RequestTimeout,
		"IdempotencyTTL":     cfg.IdempotencyTTL,
		"RateLimitWindow":    cfg.RateLimitWindow,
		"AccessTokenTTL":     cfg.AccessTokenTTL,
		"RefreshTokenTTL":    cfg.RefreshTokenTTL,
		"StatsCacheTTL":      cfg.StatsCacheTTL,
		"SweepInterval":      cfg.SweepInterval,
		"OutboxPollInterval": cfg.OutboxPollInterval,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.AvailabilityHorizonDays <= 0 {
		problems = append(problems, fmt.Sprintf("AvailabilityHorizonDays must be positive, got: %d", cfg.AvailabilityHorizonDays))
	}
	if cfg.OutboxBatchSize <= 0 {
		problems = append(problems, fmt.Sprintf("OutboxBatchSize must be positive, got: %d", cfg.OutboxBatchSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"environment", cfg.Environment,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"redis_addr", cfg.RedisAddr,
		"stats_cache_ttl", cfg.StatsCacheTTL,
		"gateway_base_url", cfg.GatewayBaseURL,
		"gateway_store_set", cfg.GatewayStoreID != "",
		"availability_horizon_days", cfg.AvailabilityHorizonDays,
		"sweep_interval", cfg.SweepInterval,
		"outbox_poll_interval", cfg.OutboxPollInterval,
	)
}

func redactMongoURI(uri string) string {
	re := regexp.MustCompile(`(mongodb(\+srv)?://)([^:@]+):([^@]+)@`)
	return re.ReplaceAllString(uri, "$1***:***@")
}

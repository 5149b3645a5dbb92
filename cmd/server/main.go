package main

import (
	availabilityhandler "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/handler"
	availabilityrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/repository"
	availabilityservice "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/service"
	availabilityvalidator "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/validator"
	bookinghandler "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/handler"
	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	bookingservice "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/service"
	notificationhandler "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/handler"
	notificationrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/repository"
	notificationservice "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payment/gateway"
	paymenthandler "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/handler"
	paymentrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/repository"
	paymentservice "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/service"
	payouthandler "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/handler"
	payoutrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/repository"
	payoutservice "github.com/azmiruddin-143/Local-Guide-Server/internal/payout/service"
	reviewhandler "github.com/azmiruddin-143/Local-Guide-Server/internal/review/handler"
	reviewrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/review/repository"
	reviewservice "github.com/azmiruddin-143/Local-Guide-Server/internal/review/service"
	settingshandler "github.com/azmiruddin-143/Local-Guide-Server/internal/settings/handler"
	settingsrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/settings/repository"
	settingsservice "github.com/azmiruddin-143/Local-Guide-Server/internal/settings/service"
	statscache "github.com/azmiruddin-143/Local-Guide-Server/internal/stats/cache"
	statshandler "github.com/azmiruddin-143/Local-Guide-Server/internal/stats/handler"
	statsrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/stats/repository"
	statsservice "github.com/azmiruddin-143/Local-Guide-Server/internal/stats/service"
	tourhandler "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/handler"
	tourrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/repository"
	tourservice "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/service"
	userhandler "github.com/azmiruddin-143/Local-Guide-Server/internal/user/handler"
	userrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/user/repository"
	userservice "github.com/azmiruddin-143/Local-Guide-Server/internal/user/service"
	wallethandler "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/handler"
	walletrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/repository"
	walletservice "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/app"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/contracts"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
)

const ServiceName = "local-guide-server"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Local Guide server")

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	jwtService := jwt.NewService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	users := userrepo.NewMongoUserRepository(cfg)
	tours := tourrepo.NewMongoTourRepository(cfg)
	availabilities := availabilityrepo.NewMongoAvailabilityRepository(cfg)
	slotLocks := availabilityrepo.NewSlotLockRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)
	payments := paymentrepo.NewMongoPaymentRepository(cfg)
	wallets := walletrepo.NewMongoWalletRepository(cfg)
	payouts := payoutrepo.NewMongoPayoutRepository(cfg)
	reviews := reviewrepo.NewMongoReviewRepository(cfg)
	settings := settingsrepo.NewMongoSettingsRepository(cfg)
	notifications := notificationrepo.NewMongoNotificationRepository(cfg)
	stats := statsrepo.NewMongoStatsRepository(cfg)

	notificationSvc := notificationservice.NewNotificationService(notifications, cfg)
	userSvc := userservice.NewUserService(users, jwtService, cfg)
	tourSvc := tourservice.NewTourService(tours, cfg)
	walletSvc := walletservice.NewWalletService(wallets, cfg)
	settingsSvc := settingsservice.NewSettingsService(settings, cfg)

	availabilityValidator := availabilityvalidator.NewAvailabilityValidator(cfg.Log, cfg.AvailabilityHorizonDays)
	availabilitySvc := availabilityservice.NewAvailabilityService(availabilities, slotLocks, availabilityValidator, cfg)

	bookingSvc := bookingservice.NewBookingService(
		bookings,
		availabilitySvc,
		tourSvc,
		walletSvc,
		payments,
		notificationSvc,
		cfg,
	)
	paymentSvc := paymentservice.NewPaymentService(
		payments,
		bookings,
		availabilitySvc,
		walletSvc,
		userSvc,
		notificationSvc,
		gateway.New(cfg),
		cfg,
	)
	payoutSvc := payoutservice.NewPayoutService(payouts, walletSvc, settingsSvc, notificationSvc, cfg)
	reviewSvc := reviewservice.NewReviewService(reviews, bookings, tours, users, notificationSvc, cfg)
	statsSvc := statsservice.NewStatsService(
		stats,
		payouts,
		walletSvc,
		statscache.NewRedisCache(cfg.Client.Redis.Client, cfg.StatsCacheTTL),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		userhandler.NewUserHandler(userSvc, jwtService, cfg.Log),
		tourhandler.NewTourHandler(tourSvc, jwtService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, jwtService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingSvc, jwtService, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentSvc, jwtService, cfg.Log),
		wallethandler.NewWalletHandler(walletSvc, jwtService, cfg.Log),
		payouthandler.NewPayoutHandler(payoutSvc, jwtService, cfg.Log),
		reviewhandler.NewReviewHandler(reviewSvc, jwtService, cfg.Log),
		settingshandler.NewSettingsHandler(settingsSvc, jwtService, cfg.Log),
		notificationhandler.NewNotificationHandler(notificationSvc, jwtService, cfg.Log),
		statshandler.NewStatsHandler(statsSvc, jwtService, cfg.Log),
	}
}

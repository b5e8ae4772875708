package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"evcharge/api"
	"evcharge/config"
	"evcharge/internal/auth"
	"evcharge/internal/bootstrap"
	"evcharge/internal/cache"
	"evcharge/internal/kafka"
	"evcharge/internal/logging"
	"evcharge/internal/payments"
	"evcharge/internal/realstations"
	"evcharge/internal/repository"
	authservice "evcharge/internal/service/auth"
	"evcharge/internal/service/availability"
	"evcharge/internal/service/booking"
	"evcharge/internal/service/payment"
	"evcharge/internal/service/review"
	"evcharge/internal/service/station"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.StationsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.RecommendCacheTTL)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	stationRepo := repository.NewStationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	hasher := auth.NewBcryptHasher(0)

	authSvc := authservice.NewAuthService(userRepo, hasher, tokens, logger)
	stationSvc := station.NewStationService(stationRepo, redisCache, logger)
	availabilitySvc := availability.NewAvailabilityService(
		stationRepo,
		bookingRepo,
		cfg.Booking.OperatingStartHour,
		cfg.Booking.OperatingEndHour,
	)
	bookingSvc := booking.NewBookingService(
		bookingRepo,
		stationRepo,
		userRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Booking.RatePerHourCents,
		cfg.Booking.MaxDuration(),
		cfg.Booking.SlotLockTTL(),
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	reviewSvc := review.NewReviewService(reviewRepo, bookingRepo)
	paymentSvc := payment.NewPaymentService(
		paymentRepo,
		bookingRepo,
		payments.NewStripeClient(cfg.Payments.StripeSecretKey, cfg.Payments.Currency),
		producer,
		cfg.Kafka.NotificationsTopic,
		cfg.Payments.Currency,
		logger,
	)
	realStationsClient := realstations.NewClient(
		cfg.RealStations.BaseURL,
		cfg.RealStations.APIKey,
		time.Duration(cfg.RealStations.TimeoutSeconds)*time.Second,
	)

	handlers := bootstrap.Handlers{
		Auth:         api.NewAuthHandler(authSvc, logger),
		Stations:     api.NewStationHandler(stationSvc, availabilitySvc, logger),
		Availability: api.NewAvailabilityHandler(availabilitySvc, logger),
		Bookings:     api.NewBookingHandler(bookingSvc, logger),
		Reviews:      api.NewReviewHandler(reviewSvc, logger),
		Payments:     api.NewPaymentHandler(paymentSvc, logger),
		RealStations: api.NewRealStationHandler(realStationsClient, logger),
	}

	if err := bootstrap.Run(ctx, cfg, tokens, handlers, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

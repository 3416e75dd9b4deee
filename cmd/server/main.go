package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/internal/config"
	"courtside/internal/handlers"
	"courtside/internal/middleware"
	"courtside/internal/pricing"
	"courtside/internal/repositories/mongodb"
	"courtside/internal/services"
	"courtside/pkg/cache"
	"courtside/pkg/database"
	"courtside/pkg/events"
	"courtside/pkg/logger"
	"courtside/routes"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Backing stores
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := db.EnsureIndexes(context.Background()); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Domain event publisher shares the Redis pool
	var publisher *events.Publisher
	if cfg.Events.Enabled {
		publisher, err = events.NewPublisher(redisCache.Client(), cfg.Events.StreamPrefix, watermill.NewStdLogger(cfg.App.Debug, false))
		if err != nil {
			appLogger.Fatalf("Failed to initialize event publisher: %v", err)
		}
		defer publisher.Close()
	}

	// Repositories
	bookingRepo := mongodb.NewBookingRepository(db)
	venueRepo := mongodb.NewVenueRepository(db, redisCache)
	promoRepo := mongodb.NewPromoCodeRepository(db, redisCache)
	notificationRepo := mongodb.NewNotificationRepository(db)

	// Services
	calculator := pricing.NewCalculator(pricing.Config{
		PeakMultiplier:   cfg.Booking.PeakMultiplier,
		PeakStartHour:    cfg.Booking.PeakStartHour,
		EarlyBirdDays:    cfg.Booking.EarlyBirdDays,
		EarlyBirdPercent: cfg.Booking.EarlyBirdPercent,
		GroupThreshold:   cfg.Booking.GroupThreshold,
		GroupPercent:     cfg.Booking.GroupPercent,
	})
	pricingService := services.NewPricingService(venueRepo, promoRepo, calculator, appLogger)
	notificationService := services.NewNotificationService(notificationRepo, appLogger)
	bookingService := services.NewBookingService(bookingRepo, venueRepo, pricingService, notificationService, redisCache, publisher, appLogger)
	venueService := services.NewVenueService(venueRepo, appLogger)
	promoService := services.NewPromoCodeService(promoRepo, calculator, appLogger)

	// Handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, pricingService)
	venueHandler := handlers.NewVenueHandler(venueService)
	promoHandler := handlers.NewPromoCodeHandler(promoService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(db, redisCache)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			appLogger.Fatalf("Invalid trusted proxies: %v", err)
		}
	}
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
		routes.SetupVenueRoutes(v1, venueHandler, bookingHandler, cfg.Security.JWTSecret)
		routes.SetupPromoCodeRoutes(v1, promoHandler, cfg.Security.JWTSecret)
		routes.SetupNotificationRoutes(v1, notificationHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", healthHandler.Health)

	// Reminder loop
	scanCtx, stopScans := context.WithCancel(context.Background())
	defer stopScans()
	if cfg.Booking.EnableReminderJob {
		go runReminderLoop(scanCtx, bookingService, cfg.Booking.ReminderInterval, cfg.Booking.ReminderLeadTime, appLogger)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"name":        cfg.App.Name,
			"version":     cfg.App.Version,
			"environment": cfg.App.Environment,
		}).Infof("Starting server on port %d", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	stopScans()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}

// runReminderLoop periodically queues reminders for upcoming confirmed
// bookings and logs bookings whose window elapsed without a check-in.
func runReminderLoop(ctx context.Context, bookingService services.BookingService, interval, lead time.Duration, appLogger *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bookingService.ScanAndSendReminders(ctx, lead); err != nil {
				appLogger.WithError(err).Warn("Reminder scan failed")
			}
			if err := bookingService.ScanOverdueCheckIns(ctx); err != nil {
				appLogger.WithError(err).Warn("Overdue check-in scan failed")
			}
		}
	}
}

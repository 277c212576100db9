package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/application"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/auth"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/config"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/database"
	bookingDomain "github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/booking"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/events"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/handler"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/logger"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/middleware"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "booking-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting booking-service", zap.String("port", cfg.Port))

	db, err := database.Connect(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.PropertyModel{},
			&events.OutboxModel{},
			&events.ProcessedEventModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// Event pipeline: kafka producer, async publisher, outbox replay.
	producer := events.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = producer.Close() }()

	outboxStore := events.NewOutboxStore(db)
	publisher := events.NewPublisher(producer, outboxStore, events.TopicBookingEvents, log,
		events.WithMaxAttempts(cfg.Publisher.MaxAttempts),
		events.WithBaseBackoff(cfg.Publisher.BaseBackoff),
		events.WithQueueSize(cfg.Publisher.QueueSize),
	)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxWorker := events.NewOutboxWorker(outboxStore, producer, cfg.Publisher.ReplayInterval, log)
	go func() {
		if err := outboxWorker.Run(ctx); err != nil && err != context.Canceled {
			log.Error("outbox worker error", zap.Error(err))
		}
	}()

	// Repositories and the lifecycle engine.
	bookingRepo := repository.NewGormBookingRepository(db)
	propertyReader := repository.NewGormPropertyReader(db)
	pricing := bookingDomain.NewNightlyRatePricing()
	bookingService := application.NewBookingService(bookingRepo, propertyReader, pricing, publisher, log)

	// Notification handoff consumer.
	processedStore := events.NewProcessedStore(db)
	notifier := events.NewNotificationConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup+"-notifier", processedStore, log)
	defer func() { _ = notifier.Close() }()
	go func() {
		log.Info("starting notification consumer")
		if err := notifier.Start(ctx); err != nil && err != context.Canceled {
			log.Error("notification consumer error", zap.Error(err))
		}
	}()

	// HTTP wiring.
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())

	handler.NewHealthHandler(db, "booking-service").RegisterRoutes(router)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down booking-service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("booking-service stopped")
}

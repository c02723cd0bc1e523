package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feastly/internal/app/platform/config"
	"feastly/internal/app/platform/handler"
	"feastly/internal/app/platform/infrastructure/messaging"
	"feastly/internal/app/platform/processor"
	"feastly/internal/app/platform/repository"
	"feastly/internal/app/platform/service"
	"feastly/internal/app/platform/util"
	"feastly/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectRetries    = 5
	connectRetryDelay = 3 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger.Init("platform-service", cfg.LogLevel)

	logger.Info().Msg("Starting platform service")

	db, err := connectPostgres(cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	mongoClient, err := connectMongo(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	mongoDB := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	producer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)

	// Репозитории
	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(mongoDB)
	reportRepo := repository.NewReportRepository(mongoDB)

	// Сервисы
	clock := service.NewSystemClock()
	orderService := service.NewOrderService(orderRepo, catalogRepo, producer, clock)
	reviewService := service.NewReviewService(reviewRepo, catalogRepo, orderRepo, orderService, clock)
	reportService := service.NewReportService(orderRepo, catalogRepo, userRepo, reportRepo,
		redisClient, cfg.Reports.StatsCacheTTL, clock)

	// Планировщик отчетов
	scheduler := processor.NewReportScheduler(reportService, catalogRepo, cfg.Reports.Concurrency)
	if err := scheduler.Start(cfg.Reports.DailySchedule, cfg.Reports.MonthlySchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start report scheduler")
	}

	// HTTP
	orderHandler := handler.NewOrderHandler(orderService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	reportHandler := handler.NewReportHandler(reportService, scheduler)

	router := handler.SetupRouter(orderHandler, reviewHandler, reportHandler,
		cfg.JWT.Secret, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down platform service")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if err := producer.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Kafka producer")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Redis client")
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to disconnect MongoDB client")
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close PostgreSQL connection")
		}
	}

	logger.Info().Msg("Platform service stopped")
}

func connectPostgres(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for i := 1; i <= connectRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		logger.Warn().Err(err).
			Int("attempt", i).
			Msg("PostgreSQL connection failed, retrying")
		time.Sleep(connectRetryDelay)
	}
	return nil, err
}

func connectMongo(uri string) (*mongo.Client, error) {
	var client *mongo.Client
	var err error
	for i := 1; i <= connectRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
		}
		cancel()
		if err == nil {
			return client, nil
		}
		logger.Warn().Err(err).
			Int("attempt", i).
			Msg("MongoDB connection failed, retrying")
		time.Sleep(connectRetryDelay)
	}
	return nil, err
}

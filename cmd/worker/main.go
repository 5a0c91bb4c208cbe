package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	workerUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewZapLogger("production").Fatal("cannot load config", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env).With(zap.String("component", "worker"))
	defer appLogger.Sync()
	appLogger.Info("Starting Portfolio Cache Worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Cache
	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Repositories
	portfolioRepo := persistence.NewPostgresPortfolioRepo(dbPool, appLogger)
	portfolioCache := persistence.NewRedisPortfolioCache(redisClient, cfg.Redis.CacheTTL, appLogger)

	// Worker Use Case
	processEventUC := workerUC.NewProcessPortfolioEventUseCase(portfolioRepo, portfolioCache, appLogger)

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicPortfolioEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicPortfolioEvents), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		msgLogger := appLogger.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.String("key", string(msg.Key)))

		payload, err := event.DecodePortfolioEvent(msg)
		if err != nil {
			msgLogger.Error("Failed to unmarshal event. Skipping.", err)
			commitMessage(ctx, consumer, msg, msgLogger)
			continue
		}

		if err := processEventUC.ExecuteWithRetry(ctx, payload); err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			// committing below moves the group offset past this message
			msgLogger.Error("Failed to process portfolio event, skipping", err, zap.String("event_type", string(payload.EventType)))
		}

		commitMessage(ctx, consumer, msg, msgLogger)
	}
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}

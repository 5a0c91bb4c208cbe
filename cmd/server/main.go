package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-builder/adapters/http"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	searchUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/search"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
	"github.com/khoahotran/portfolio-builder/pkg/tracing"
)

const serviceName = "portfolio-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewZapLogger("production").Fatal("cannot load config", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Portfolio API Server...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("cannot init tracer", err)
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	portfolioRepo := persistence.NewPostgresPortfolioRepo(dbPool, appLogger)
	portfolioCache := persistence.NewRedisPortfolioCache(redisClient, cfg.Redis.CacheTTL, appLogger)
	searchRepo := persistence.NewPostgresSearchRepo(dbPool, appLogger)

	// Use Cases
	portfolioUseCase := portfolioUC.NewPortfolioUseCase(portfolioRepo, portfolioCache, kafkaClient, appLogger)
	feedUseCase := portfolioUC.NewFeedUseCase(portfolioUseCase, cfg.App.PublicURL, appLogger)
	searchUseCase := searchUC.NewSearchUseCase(searchRepo, appLogger)

	// HTTP Handlers
	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Portfolio: httpAdapter.NewPortfolioHandler(portfolioUseCase, appLogger),
		Search:    httpAdapter.NewSearchHandler(searchUseCase, appLogger),
		Feed:      httpAdapter.NewFeedHandler(feedUseCase, appLogger),
	}, appLogger, serviceName)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	portfolioUseCase.Wait()
	if err := shutdownTracer(shutdownCtx); err != nil {
		appLogger.Error("Failed to shutdown tracer", err)
	}
	appLogger.Info("Server exited")
}

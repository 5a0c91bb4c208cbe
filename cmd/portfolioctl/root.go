package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

var (
	configDir string
	verbose   bool

	cfg       config.Config
	appLogger logger.Logger = logger.NewNopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Operate the portfolio store",
	Long: `portfolioctl manages the portfolio database: schema migrations, seeding
the default record, YAML/JSON export and import, and Cloudinary backups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		env := cfg.App.Env
		if verbose {
			env = "development"
		}
		appLogger = logger.NewZapLogger(env)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLogger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yaml and .env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// writeStack holds the dependencies for commands that write the portfolio
// through the same path as the API.
type writeStack struct {
	portfolioUseCase *portfolioUC.PortfolioUseCase
	closers          []func()
}

func (s *writeStack) Close() {
	s.portfolioUseCase.Wait()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openWriteStack(ctx context.Context) (*writeStack, error) {
	s := &writeStack{}

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, dbPool.Close)

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		dbPool.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = redisClient.Close() })

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		_ = redisClient.Close()
		dbPool.Close()
		return nil, err
	}
	s.closers = append(s.closers, kafkaClient.Close)

	s.portfolioUseCase = portfolioUC.NewPortfolioUseCase(
		persistence.NewPostgresPortfolioRepo(dbPool, appLogger),
		persistence.NewRedisPortfolioCache(redisClient, cfg.Redis.CacheTTL, appLogger),
		kafkaClient,
		appLogger,
	)
	return s, nil
}

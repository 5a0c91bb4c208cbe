package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	maxProcessAttempts = 3
	processBackoff     = 500 * time.Millisecond
)

// ProcessPortfolioEventUseCase re-warms the cache after a write so the next
// public read is served without touching Postgres.
type ProcessPortfolioEventUseCase struct {
	portfolioRepo portfolio.Repository
	cache         portfolio.Cache
	logger        logger.Logger
	backoff       time.Duration
}

func NewProcessPortfolioEventUseCase(repo portfolio.Repository, cache portfolio.Cache, log logger.Logger) *ProcessPortfolioEventUseCase {
	return &ProcessPortfolioEventUseCase{portfolioRepo: repo, cache: cache, logger: log, backoff: processBackoff}
}

// ExecuteWithRetry runs Execute up to maxProcessAttempts times, waiting a
// little longer after each failure. The consumer commits once this returns,
// so the last error is final for that message. Cancellation returns
// ctx.Err() without further attempts.
func (uc *ProcessPortfolioEventUseCase) ExecuteWithRetry(ctx context.Context, evt portfolio.Event) error {
	var err error
	for attempt := 1; attempt <= maxProcessAttempts; attempt++ {
		if err = uc.Execute(ctx, evt); err == nil {
			return nil
		}
		if attempt == maxProcessAttempts {
			break
		}
		uc.logger.Warn("Processing portfolio event failed, retrying",
			zap.Int("attempt", attempt), zap.String("event_type", string(evt.EventType)), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * uc.backoff):
		}
	}
	return err
}

func (uc *ProcessPortfolioEventUseCase) Execute(ctx context.Context, evt portfolio.Event) error {
	log := uc.logger.With(
		zap.String("event_type", string(evt.EventType)),
		zap.String("portfolio_id", evt.PortfolioID.String()),
		zap.Int("version", evt.Version),
	)

	switch evt.EventType {
	case portfolio.EventCreated, portfolio.EventUpdated:
	default:
		log.Warn("Unknown portfolio event type, skip.")
		return nil
	}

	p, err := uc.portfolioRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			log.Warn("Portfolio not found, skip.")
			return nil
		}
		return fmt.Errorf("get portfolio failed: %w", err)
	}

	if p.Version < evt.Version {
		// Read replica lag or an out of order event; the next event fixes it.
		log.Warn("Stored portfolio is older than event", zap.Int("stored_version", p.Version))
	}

	if err := uc.cache.Set(ctx, p); err != nil {
		return fmt.Errorf("warm portfolio cache failed: %w", err)
	}

	log.Info("Portfolio cache warmed", zap.Int("stored_version", p.Version))
	return nil
}

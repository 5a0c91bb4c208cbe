package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	// maxUpdateAttempts bounds the read-merge-write loop when another writer
	// bumps the version between our read and our write.
	maxUpdateAttempts = 3
	publishTimeout    = 5 * time.Second
)

var tracer = otel.Tracer("github.com/khoahotran/portfolio-builder/usecase/portfolio")

type PortfolioUseCase struct {
	portfolioRepo portfolio.Repository
	cache         portfolio.Cache
	publisher     portfolio.EventPublisher
	logger        logger.Logger
	now           func() time.Time

	pending sync.WaitGroup
}

func NewPortfolioUseCase(repo portfolio.Repository, cache portfolio.Cache, publisher portfolio.EventPublisher, log logger.Logger) *PortfolioUseCase {
	return &PortfolioUseCase{
		portfolioRepo: repo,
		cache:         cache,
		publisher:     publisher,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type GetPortfolioOutput struct {
	Portfolio *portfolio.Portfolio
	IsDefault bool
}

// ExecuteGetPortfolio returns the stored record, or the default record when
// nothing is stored. The default is never written back.
func (uc *PortfolioUseCase) ExecuteGetPortfolio(ctx context.Context) (*GetPortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "PortfolioUseCase.GetPortfolio")
	defer span.End()

	p, err := uc.load(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			span.SetAttributes(attribute.Bool("portfolio.default", true))
			return &GetPortfolioOutput{Portfolio: portfolio.Default(), IsDefault: true}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get portfolio failed: %w", err)
	}
	return &GetPortfolioOutput{Portfolio: p}, nil
}

func (uc *PortfolioUseCase) load(ctx context.Context) (*portfolio.Portfolio, error) {
	cached, err := uc.cache.Get(ctx)
	if err != nil {
		uc.logger.Warn("Portfolio cache read failed, falling back to store", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	p, err := uc.portfolioRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, p); err != nil {
		uc.logger.Warn("Failed to cache portfolio", zap.String("portfolio_id", p.ID.String()), zap.Error(err))
	}
	return p, nil
}

type UpdatePortfolioInput struct {
	Patch portfolio.Patch
}

type UpdatePortfolioOutput struct {
	Portfolio *portfolio.Portfolio
	Created   bool
}

// ParseUpdateInput decodes a raw update payload, mapping decode failures onto
// the apperror kinds the HTTP layer understands.
func ParseUpdateInput(raw []byte) (UpdatePortfolioInput, error) {
	patch, err := portfolio.DecodePatch(raw)
	if err != nil {
		return UpdatePortfolioInput{}, toAppError(err)
	}
	return UpdatePortfolioInput{Patch: patch}, nil
}

// ExecuteUpdatePortfolio merges the patch into the stored record (or builds
// a new one) and persists it. Nothing is written when validation fails.
func (uc *PortfolioUseCase) ExecuteUpdatePortfolio(ctx context.Context, input UpdatePortfolioInput) (*UpdatePortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "PortfolioUseCase.UpdatePortfolio")
	defer span.End()

	if input.Patch.IsEmpty() {
		return nil, apperror.NewEmptyBody()
	}

	var lastErr error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		p, created, err := uc.applyPatch(ctx, input.Patch)
		if err == nil {
			span.SetAttributes(attribute.Int("portfolio.version", p.Version), attribute.Int("portfolio.attempts", attempt))
			uc.afterWrite(ctx, p, created)
			return &UpdatePortfolioOutput{Portfolio: p, Created: created}, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			span.RecordError(err)
			return nil, err
		}
		lastErr = err
		uc.logger.Warn("Portfolio changed concurrently, retrying update", zap.Int("attempt", attempt), zap.Strings("keys", input.Patch.Keys()))
	}

	span.RecordError(lastErr)
	return nil, lastErr
}

func (uc *PortfolioUseCase) applyPatch(ctx context.Context, patch portfolio.Patch) (*portfolio.Portfolio, bool, error) {
	existing, err := uc.portfolioRepo.Get(ctx)
	switch {
	case err == nil:
		next := *existing
		next.Apply(patch)
		if err := uc.prepare(&next); err != nil {
			return nil, false, err
		}
		if err := uc.portfolioRepo.Update(ctx, &next, existing.Version); err != nil {
			return nil, false, err
		}
		return &next, false, nil

	case errors.Is(err, apperror.ErrNotFound):
		next := portfolio.New(patch)
		next.ID = uuid.New()
		if err := uc.prepare(next); err != nil {
			return nil, false, err
		}
		if err := uc.portfolioRepo.Create(ctx, next); err != nil {
			return nil, false, err
		}
		return next, true, nil

	default:
		return nil, false, fmt.Errorf("load portfolio for update failed: %w", err)
	}
}

func (uc *PortfolioUseCase) prepare(p *portfolio.Portfolio) error {
	p.PrepareForSave(uc.now())
	if err := p.Validate(); err != nil {
		return toAppError(err)
	}
	return nil
}

func (uc *PortfolioUseCase) afterWrite(ctx context.Context, p *portfolio.Portfolio, created bool) {
	if err := uc.cache.Set(ctx, p); err != nil {
		uc.logger.Warn("Failed to write portfolio through cache, invalidating", zap.Error(err))
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.Warn("Failed to invalidate portfolio cache", zap.Error(err))
		}
	}

	evt := portfolio.Event{
		EventType:   portfolio.EventUpdated,
		PortfolioID: p.ID,
		Version:     p.Version,
		OccurredAt:  p.UpdatedAt,
	}
	if created {
		evt.EventType = portfolio.EventCreated
	}

	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.publisher.PublishPortfolioEvent(ctx, evt); err != nil {
			uc.logger.Error("Failed to publish portfolio event", err,
				zap.String("event_type", string(evt.EventType)),
				zap.String("portfolio_id", evt.PortfolioID.String()),
			)
		}
	}()
}

// Wait blocks until every in-flight event publish has finished.
func (uc *PortfolioUseCase) Wait() {
	uc.pending.Wait()
}

type SeedPortfolioInput struct {
	Force bool
}

type SeedPortfolioOutput struct {
	Portfolio *portfolio.Portfolio
	Seeded    bool
}

// ExecuteSeedPortfolio stores the default record when nothing is stored yet,
// or unconditionally with Force.
func (uc *PortfolioUseCase) ExecuteSeedPortfolio(ctx context.Context, input SeedPortfolioInput) (*SeedPortfolioOutput, error) {
	existing, err := uc.portfolioRepo.Get(ctx)
	if err == nil && !input.Force {
		return &SeedPortfolioOutput{Portfolio: existing}, nil
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("seed portfolio failed: %w", err)
	}

	out, err := uc.ExecuteUpdatePortfolio(ctx, UpdatePortfolioInput{Patch: portfolio.PatchFrom(portfolio.Default())})
	if err != nil {
		return nil, err
	}
	return &SeedPortfolioOutput{Portfolio: out.Portfolio, Seeded: true}, nil
}

func toAppError(err error) error {
	var verr *portfolio.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperror.NewValidation(verr.Messages)
	case errors.Is(err, portfolio.ErrEmptyPatch):
		return apperror.NewEmptyBody()
	case errors.Is(err, portfolio.ErrMalformedPatch):
		return apperror.NewAppError(apperror.ErrInvalidInput, "Invalid JSON body", "request body must be a JSON object", err)
	}
	return err
}

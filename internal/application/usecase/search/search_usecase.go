package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/search"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

type SearchUseCase struct {
	searchRepo search.Repository
	logger     logger.Logger
}

func NewSearchUseCase(sr search.Repository, log logger.Logger) *SearchUseCase {
	return &SearchUseCase{
		searchRepo: sr,
		logger:     log,
	}
}

type SearchInput struct {
	Query string
	Limit int
}

type SearchOutput struct {
	Results []search.SearchResult
}

func (uc *SearchUseCase) Execute(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	input.Query = strings.TrimSpace(input.Query)
	if input.Query == "" {
		return &SearchOutput{Results: []search.SearchResult{}}, nil
	}
	if input.Limit <= 0 {
		input.Limit = defaultLimit
	}
	if input.Limit > maxLimit {
		input.Limit = maxLimit
	}

	uc.logger.Info("Executing portfolio search", zap.String("query", input.Query), zap.Int("limit", input.Limit))
	results, err := uc.searchRepo.Search(ctx, input.Query, input.Limit)
	if err != nil {
		uc.logger.Error("Search execution failed", err)
		return nil, apperror.NewInternal("search failed", err)
	}

	return &SearchOutput{Results: results}, nil
}

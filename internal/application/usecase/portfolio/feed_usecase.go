package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type FeedUseCase struct {
	portfolioUseCase *PortfolioUseCase
	publicURL        string
	logger           logger.Logger
}

func NewFeedUseCase(portfolioUC *PortfolioUseCase, publicURL string, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{
		portfolioUseCase: portfolioUC,
		publicURL:        strings.TrimSuffix(publicURL, "/"),
		logger:           log,
	}
}

// Execute builds an RSS feed with one item per project.
func (uc *FeedUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	out, err := uc.portfolioUseCase.ExecuteGetPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	p := out.Portfolio

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	feed := &feeds.Feed{
		Title:       p.FullTitle() + " | Projects",
		Link:        &feeds.Link{Href: uc.publicURL},
		Description: p.About,
		Author:      &feeds.Author{Name: p.Name, Email: p.Email},
		Created:     updated,
		Updated:     updated,
	}

	feed.Items = make([]*feeds.Item, 0, len(p.Projects))
	for i, pr := range p.Projects {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/#project-%d", uc.publicURL, i+1),
			Title:       pr.Title,
			Link:        &feeds.Link{Href: uc.projectLink(pr, i)},
			Description: projectSummary(pr),
			Created:     updated,
		})
	}

	uc.logger.Info("Projects feed generated", zap.Int("item_count", len(feed.Items)), zap.Bool("default", out.IsDefault))
	return feed, nil
}

func (uc *FeedUseCase) projectLink(pr portfolio.Project, i int) string {
	for _, u := range []string{pr.DemoURL, pr.GithubURL} {
		if strings.HasPrefix(u, "http") {
			return u
		}
	}
	return fmt.Sprintf("%s/#project-%d", uc.publicURL, i+1)
}

func projectSummary(pr portfolio.Project) string {
	if len(pr.Technologies) == 0 {
		return pr.Description
	}
	return fmt.Sprintf("%s (%s)", pr.Description, strings.Join(pr.Technologies, ", "))
}

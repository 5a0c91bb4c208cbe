package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	portfolioTable = "portfolio"
	primarySlot    = 1
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var portfolioColumns = []string{
	"id", "name", "title", "about", "email",
	"social", "skills", "projects", "experience", "education",
	"version", "created_at", "updated_at",
}

type postgresPortfolioRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPortfolioRepo(db *pgxpool.Pool, logger logger.Logger) portfolio.Repository {
	return &postgresPortfolioRepo{db: db, logger: logger}
}

// jsonbColumns holds the marshalled document parts of a portfolio row.
type jsonbColumns struct {
	social, skills, projects, experience, education []byte
}

func marshalColumns(p *portfolio.Portfolio) (jsonbColumns, error) {
	var (
		cols jsonbColumns
		err  error
	)
	if cols.social, err = json.Marshal(p.Social); err != nil {
		return cols, fmt.Errorf("marshal social: %w", err)
	}
	if cols.skills, err = json.Marshal(emptyIfNil(p.Skills)); err != nil {
		return cols, fmt.Errorf("marshal skills: %w", err)
	}
	if cols.projects, err = json.Marshal(emptyIfNil(p.Projects)); err != nil {
		return cols, fmt.Errorf("marshal projects: %w", err)
	}
	if cols.experience, err = json.Marshal(emptyIfNil(p.Experience)); err != nil {
		return cols, fmt.Errorf("marshal experience: %w", err)
	}
	if cols.education, err = json.Marshal(emptyIfNil(p.Education)); err != nil {
		return cols, fmt.Errorf("marshal education: %w", err)
	}
	return cols, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *postgresPortfolioRepo) scanPortfolio(row pgx.Row) (*portfolio.Portfolio, error) {
	p := &portfolio.Portfolio{}
	var cols jsonbColumns

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Title,
		&p.About,
		&p.Email,
		&cols.social,
		&cols.skills,
		&cols.projects,
		&cols.experience,
		&cols.education,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("portfolio", "primary")
		}
		return nil, apperror.NewInternal("failed to scan portfolio row", err)
	}

	// Unmarshal JSONB
	if err := json.Unmarshal(cols.social, &p.Social); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio social", err)
	}
	if err := json.Unmarshal(cols.skills, &p.Skills); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio skills", err)
	}
	if err := json.Unmarshal(cols.projects, &p.Projects); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio projects", err)
	}
	if err := json.Unmarshal(cols.experience, &p.Experience); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio experience", err)
	}
	if err := json.Unmarshal(cols.education, &p.Education); err != nil {
		r.logger.Warn("Failed to unmarshal education, returning empty list",
			zap.String("portfolio_id", p.ID.String()), zap.Error(err))
		p.Education = []portfolio.Education{}
	}

	p.Skills = emptyIfNil(p.Skills)
	p.Projects = emptyIfNil(p.Projects)
	p.Experience = emptyIfNil(p.Experience)
	p.Education = emptyIfNil(p.Education)
	return p, nil
}

func (r *postgresPortfolioRepo) Get(ctx context.Context) (*portfolio.Portfolio, error) {
	query, args, err := psql.Select(portfolioColumns...).
		From(portfolioTable).
		Where(sq.Eq{"slot": primarySlot}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build get portfolio query", err)
	}

	return r.scanPortfolio(r.db.QueryRow(ctx, query, args...))
}

// Create inserts the first portfolio record. A record already occupying the
// slot yields a Conflict rather than an overwrite.
func (r *postgresPortfolioRepo) Create(ctx context.Context, p *portfolio.Portfolio) error {
	cols, err := marshalColumns(p)
	if err != nil {
		return apperror.NewInternal("failed to marshal portfolio", err)
	}

	query, args, err := psql.Insert(portfolioTable).
		Columns(append([]string{"slot"}, portfolioColumns...)...).
		Values(
			primarySlot, p.ID, p.Name, p.Title, p.About, p.Email,
			cols.social, cols.skills, cols.projects, cols.experience, cols.education,
			1, p.CreatedAt, p.UpdatedAt,
		).
		Suffix("ON CONFLICT (slot) DO NOTHING").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build insert portfolio query", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal("failed to insert portfolio", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("portfolio", "slot", strconv.Itoa(primarySlot))
	}

	p.Version = 1
	r.logger.Info("Portfolio created", zap.String("portfolio_id", p.ID.String()))
	return nil
}

// Update overwrites the stored record only while its version still equals
// expectedVersion.
func (r *postgresPortfolioRepo) Update(ctx context.Context, p *portfolio.Portfolio, expectedVersion int) error {
	cols, err := marshalColumns(p)
	if err != nil {
		return apperror.NewInternal("failed to marshal portfolio", err)
	}

	query, args, err := psql.Update(portfolioTable).
		SetMap(map[string]interface{}{
			"name":       p.Name,
			"title":      p.Title,
			"about":      p.About,
			"email":      p.Email,
			"social":     cols.social,
			"skills":     cols.skills,
			"projects":   cols.projects,
			"experience": cols.experience,
			"education":  cols.education,
			"updated_at": p.UpdatedAt,
			"version":    expectedVersion + 1,
		}).
		Where(sq.Eq{"slot": primarySlot, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update portfolio query", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal("failed to update portfolio", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("portfolio", "version", strconv.Itoa(expectedVersion))
	}

	p.Version = expectedVersion + 1
	return nil
}

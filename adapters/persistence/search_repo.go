package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-builder/internal/domain/search"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type postgresSearchRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSearchRepo(db *pgxpool.Pool, logger logger.Logger) search.Repository {
	return &postgresSearchRepo{db: db, logger: logger}
}

const headlineOpts = `'StartSel=*,StopSel=*,MaxFragments=1,MaxWords=20,MinWords=5'`

// hitsSQL ranks each section of the portfolio document against q.query.
// Every branch first matches the generated ts column, so the GIN index rules
// out a non-matching document before any list is exploded. List sections are
// exploded with jsonb_array_elements so every project, position and
// education entry is ranked on its own.
const hitsSQL = `(
	SELECT 'profile' AS section,
		p.name || ' - ' || p.title AS title,
		ts_headline('simple', p.about, q.query, ` + headlineOpts + `) AS snippet,
		ts_rank_cd(to_tsvector('simple', p.name || ' ' || p.title || ' ' || p.about), q.query) AS rank
	FROM portfolio p CROSS JOIN q
	WHERE p.ts @@ q.query
		AND to_tsvector('simple', p.name || ' ' || p.title || ' ' || p.about) @@ q.query

	UNION ALL

	SELECT 'project',
		coalesce(e.item->>'title', ''),
		ts_headline('simple', coalesce(e.item->>'description', ''), q.query, ` + headlineOpts + `),
		ts_rank_cd(jsonb_to_tsvector('simple', e.item, '["string"]'), q.query)
	FROM portfolio p CROSS JOIN q
	CROSS JOIN LATERAL jsonb_array_elements(p.projects) AS e(item)
	WHERE p.ts @@ q.query
		AND jsonb_to_tsvector('simple', e.item, '["string"]') @@ q.query

	UNION ALL

	SELECT 'experience',
		coalesce(e.item->>'position', '') || ' at ' || coalesce(e.item->>'company', ''),
		ts_headline('simple', coalesce(e.item->>'description', ''), q.query, ` + headlineOpts + `),
		ts_rank_cd(jsonb_to_tsvector('simple', e.item, '["string"]'), q.query)
	FROM portfolio p CROSS JOIN q
	CROSS JOIN LATERAL jsonb_array_elements(p.experience) AS e(item)
	WHERE p.ts @@ q.query
		AND jsonb_to_tsvector('simple', e.item, '["string"]') @@ q.query

	UNION ALL

	SELECT 'education',
		coalesce(e.item->>'institution', e.item->>'degree', e.item->>'field', 'Education'),
		ts_headline('simple',
			concat_ws(' ', e.item->>'degree', e.item->>'field', e.item->>'institution'),
			q.query, ` + headlineOpts + `),
		ts_rank_cd(jsonb_to_tsvector('simple', e.item, '["string"]'), q.query)
	FROM portfolio p CROSS JOIN q
	CROSS JOIN LATERAL jsonb_array_elements(p.education) AS e(item)
	WHERE p.ts @@ q.query
		AND jsonb_to_tsvector('simple', e.item, '["string"]') @@ q.query
) AS hits`

func (r *postgresSearchRepo) Search(ctx context.Context, query string, limit int) ([]search.SearchResult, error) {
	sql, args, err := psql.Select("section", "title", "snippet", "rank").
		Prefix("WITH q AS (SELECT websearch_to_tsquery('simple', ?) AS query)", query).
		From(hitsSQL).
		OrderBy("rank DESC", "section", "title").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build search query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to execute search query", err)
	}
	defer rows.Close()

	results := make([]search.SearchResult, 0)
	for rows.Next() {
		var res search.SearchResult
		if err := rows.Scan(&res.Section, &res.Title, &res.Snippet, &res.Rank); err != nil {
			return nil, apperror.NewInternal("failed to scan search result", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating search results", err)
	}
	return results, nil
}

package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	portfolioCacheKey = "portfolio:primary"
	maxSetAttempts    = 3
)

type redisPortfolioCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisPortfolioCache(rdb *redis.Client, ttl time.Duration, logger logger.Logger) portfolio.Cache {
	return &redisPortfolioCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *redisPortfolioCache) Get(ctx context.Context) (*portfolio.Portfolio, error) {
	data, err := c.rdb.Get(ctx, portfolioCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p portfolio.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", portfolioCacheKey), zap.Error(err))
		_ = c.rdb.Del(ctx, portfolioCacheKey).Err()
		return nil, nil
	}
	return &p, nil
}

// Set refuses records that were never stored; the default portfolio is
// rebuilt on each read instead. A record older than the cached one is
// dropped, so a slow read-through can never overwrite a newer write.
func (c *redisPortfolioCache) Set(ctx context.Context, p *portfolio.Portfolio) error {
	if p == nil || !p.IsStored() {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	for attempt := 1; attempt <= maxSetAttempts; attempt++ {
		err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cached, err := cachedVersion(ctx, tx)
			if err != nil {
				return err
			}
			if cached > p.Version {
				c.logger.Debug("Skipping stale cache write",
					zap.Int("version", p.Version), zap.Int("cached_version", cached))
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, portfolioCacheKey, data, c.ttl)
				return nil
			})
			return err
		}, portfolioCacheKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// cachedVersion returns the version of the cached record, or 0 when the key
// is missing or undecodable.
func cachedVersion(ctx context.Context, tx *redis.Tx) (int, error) {
	data, err := tx.Get(ctx, portfolioCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, nil
	}
	return head.Version, nil
}

func (c *redisPortfolioCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, portfolioCacheKey).Err()
}

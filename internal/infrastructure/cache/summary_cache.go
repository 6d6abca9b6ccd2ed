package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/application/dashboard"
)

const summaryKeyPrefix = "dashboard:summary:"

// RedisSummaryCache stores rendered dashboard summaries in Redis so every
// instance serves the same snapshot. Cache trouble is logged and treated as
// a miss; the dashboard recomputes from the database.
type RedisSummaryCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSummaryCache connects to Redis and returns a summary cache
func NewRedisSummaryCache(cfg RedisConfig, logger *zap.Logger) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{
		client:    client,
		keyPrefix: summaryKeyPrefix,
		logger:    logger,
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache sharing an existing client
func NewRedisSummaryCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisSummaryCache {
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: summaryKeyPrefix,
		logger:    logger,
	}
}

// Get returns the cached summary for an org
func (c *RedisSummaryCache) Get(ctx context.Context, orgID uuid.UUID) (*dashboard.Summary, bool) {
	raw, err := c.client.Get(ctx, c.key(orgID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("summary cache read failed",
			zap.String("org_id", orgID.String()), zap.Error(err))
		return nil, false
	}

	var summary dashboard.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.logger.Warn("summary cache entry corrupt",
			zap.String("org_id", orgID.String()), zap.Error(err))
		return nil, false
	}
	return &summary, true
}

// Set stores the summary for an org with a TTL
func (c *RedisSummaryCache) Set(ctx context.Context, orgID uuid.UUID, summary *dashboard.Summary, ttl time.Duration) {
	raw, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("summary cache marshal failed",
			zap.String("org_id", orgID.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(orgID), raw, ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed",
			zap.String("org_id", orgID.String()), zap.Error(err))
	}
}

// Invalidate drops the cached summary for an org
func (c *RedisSummaryCache) Invalidate(ctx context.Context, orgID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(orgID)).Err(); err != nil {
		c.logger.Warn("summary cache invalidation failed",
			zap.String("org_id", orgID.String()), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

func (c *RedisSummaryCache) key(orgID uuid.UUID) string {
	return c.keyPrefix + orgID.String()
}

// Ensure RedisSummaryCache implements SummaryCache
var _ dashboard.SummaryCache = (*RedisSummaryCache)(nil)

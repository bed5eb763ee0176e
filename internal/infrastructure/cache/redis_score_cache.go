package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/soko/backend/internal/application/trust"
)

const defaultScoreKeyPrefix = "trust:score:"

// RedisScoreCache implements the trust badge score cache over Redis. Suitable
// for distributed deployments where multiple instances serve badge reads.
type RedisScoreCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisScoreCache creates a new Redis-backed score cache
func NewRedisScoreCache(cfg RedisConfig, ttl time.Duration) (*RedisScoreCache, error) {
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

	return NewRedisScoreCacheWithClient(client, defaultScoreKeyPrefix, ttl), nil
}

// NewRedisScoreCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisScoreCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisScoreCache {
	if keyPrefix == "" {
		keyPrefix = defaultScoreKeyPrefix
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisScoreCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// GetScore returns the cached score for a shop, with a miss flag
func (c *RedisScoreCache) GetScore(ctx context.Context, shopID uuid.UUID) (int, bool, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+shopID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cached score: %w", err)
	}

	score, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached score %q: %w", val, err)
	}
	return score, true, nil
}

// SetScore caches a shop's score with the configured TTL
func (c *RedisScoreCache) SetScore(ctx context.Context, shopID uuid.UUID, score int) error {
	err := c.client.Set(ctx, c.keyPrefix+shopID.String(), strconv.Itoa(score), c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache score: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisScoreCache) Close() error {
	return c.client.Close()
}

var _ trust.ScoreCache = (*RedisScoreCache)(nil)

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"irt-diagnostic-engine/internal/config"
	"irt-diagnostic-engine/internal/logger"
	"irt-diagnostic-engine/internal/metrics"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps a Redis client with cache-hit/miss metrics and logging.
type RedisClient struct {
	client  *redis.Client
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New creates a new Redis client.
func New(cfg *config.RedisConfig, metrics *metrics.Metrics, log *logger.Logger) (*RedisClient, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.DB = cfg.DB
	opt.MaxRetries = cfg.MaxRetries
	opt.PoolSize = cfg.PoolSize

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("redis connection established")

	return &RedisClient{
		client:  client,
		metrics: metrics,
		logger:  log,
	}, nil
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Health checks Redis health.
func (r *RedisClient) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Set stores a value in Redis with TTL.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}

	return nil
}

// Get retrieves a value from Redis.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.metrics.RecordCacheMiss("redis")
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	r.metrics.RecordCacheHit("redis")
	return nil
}

// Delete removes keys from Redis.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	return nil
}

// Exists checks if a key exists in Redis.
func (r *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}

	return count > 0, nil
}

// Pipeline creates a Redis pipeline for batch operations.
func (r *RedisClient) Pipeline() redis.Pipeliner {
	return r.client.Pipeline()
}

// Cache key builders for the engine's domain.
//
// AbilityKey identifies a memoized ability estimate for a user, scoped by
// a content hash of the response set that produced it so a changed
// response history naturally misses rather than serving a stale estimate.
func AbilityKey(userID, responseSetHash string) string {
	return fmt.Sprintf("engine:ability:%s:%s", userID, responseSetHash)
}

// DifficultyMapKey identifies the cached difficulty map for a given bank
// version (rebuilt whenever the underlying response log is recalibrated).
func DifficultyMapKey(bankVersion string) string {
	return fmt.Sprintf("engine:difficulty:%s", bankVersion)
}

// SessionStateKey identifies a caller's in-flight session snapshot, used
// only as an optional convenience cache; the core never relies on it
// existing.
func SessionStateKey(sessionID string) string {
	return fmt.Sprintf("engine:session:%s", sessionID)
}

// Common cache errors.
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

const menuCacheKey = "menu:active"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		client = nil // GetClient() == nil signals callers to skip caching
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// CacheMenu stores the serialized active menu for the configured expiry.
// Callers serialize the product list themselves so the cache stays agnostic
// of the model package.
func CacheMenu(ctx context.Context, payload []byte, expiry time.Duration) error {
	logger.Debug("Caching active menu", map[string]interface{}{
		"bytes":  len(payload),
		"expiry": expiry.String(),
	})

	if err := client.Set(ctx, menuCacheKey, payload, expiry).Err(); err != nil {
		logger.Error("Failed to cache menu", err, nil)
		return err
	}
	return nil
}

// GetCachedMenu returns the cached menu payload, or (nil, nil) on a cache
// miss.
func GetCachedMenu(ctx context.Context) ([]byte, error) {
	val, err := client.Get(ctx, menuCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached menu", err, nil)
		return nil, err
	}
	return val, nil
}

// InvalidateMenu drops the cached menu. Called after any product mutation.
func InvalidateMenu(ctx context.Context) error {
	logger.Debug("Invalidating menu cache", nil)
	if err := client.Del(ctx, menuCacheKey).Err(); err != nil {
		logger.Error("Failed to invalidate menu cache", err, nil)
		return err
	}
	return nil
}

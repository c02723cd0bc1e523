package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/redis/go-redis/v9"
)

const currentStatsCacheKey = "stats:admin:current"

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// GetCurrentStats возвращает закешированные счетчики платформы
// Промах кеша - (nil, nil)
func (r *RedisClient) GetCurrentStats(ctx context.Context) (*entity.CurrentAdminStats, error) {
	data, err := r.client.Get(ctx, currentStatsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current stats from cache: %w", err)
	}

	var stats entity.CurrentAdminStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal current stats: %w", err)
	}

	return &stats, nil
}

// SetCurrentStats кеширует счетчики платформы с TTL
func (r *RedisClient) SetCurrentStats(ctx context.Context, stats *entity.CurrentAdminStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal current stats: %w", err)
	}

	if err := r.client.Set(ctx, currentStatsCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set current stats in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

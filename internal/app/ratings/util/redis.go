package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ratehub/pkg/metrics"
)

const (
	serviceName          = "ratehub"
	platformDashboardKey = "dashboard:platform"
	dashboardKeyPrefix   = "dashboard"
)

// RedisClient кеширует платформенный дашборд
// Дашборд считается из трех таблиц целиком, поэтому короткий TTL заметно
// снижает нагрузку при частых запросах администраторов
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int, ttl time.Duration) (*RedisClient, error) {
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

	return &RedisClient{client: client, ttl: ttl}, nil
}

// GetPlatformDashboard возвращает закешированный JSON дашборда
// Промах кеша - (nil, nil), не ошибка
func (r *RedisClient) GetPlatformDashboard(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, platformDashboardKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, dashboardKeyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get dashboard from cache: %w", err)
	}

	metrics.RecordCacheHit(serviceName, dashboardKeyPrefix)
	return data, nil
}

// SetPlatformDashboard кеширует JSON дашборда с настроенным TTL
func (r *RedisClient) SetPlatformDashboard(ctx context.Context, payload []byte) error {
	if err := r.client.Set(ctx, platformDashboardKey, payload, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set dashboard in cache: %w", err)
	}
	return nil
}

// InvalidatePlatformDashboard сбрасывает кеш дашборда
// Вызывается планировщиком после обновления снимков рейтингов
func (r *RedisClient) InvalidatePlatformDashboard(ctx context.Context) error {
	if err := r.client.Del(ctx, platformDashboardKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

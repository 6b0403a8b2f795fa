package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	cruisesKey      = "cache:catalog:cruises"
	destinationsKey = "cache:catalog:destinations"
)

type RedisCache struct {
	client     redis.UniversalClient
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, catalogTTL: catalogTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetCruises returns nil without an error on a cache miss.
func (c *RedisCache) GetCruises(ctx context.Context) ([]domain.Cruise, error) {
	var cruises []domain.Cruise
	ok, err := c.getJSON(ctx, cruisesKey, &cruises)
	if err != nil || !ok {
		return nil, err
	}
	return cruises, nil
}

func (c *RedisCache) SetCruises(ctx context.Context, cruises []domain.Cruise) error {
	return c.setJSON(ctx, cruisesKey, cruises)
}

// GetDestinations returns nil without an error on a cache miss.
func (c *RedisCache) GetDestinations(ctx context.Context) ([]domain.Destination, error) {
	var destinations []domain.Destination
	ok, err := c.getJSON(ctx, destinationsKey, &destinations)
	if err != nil || !ok {
		return nil, err
	}
	return destinations, nil
}

func (c *RedisCache) SetDestinations(ctx context.Context, destinations []domain.Destination) error {
	return c.setJSON(ctx, destinationsKey, destinations)
}

func (c *RedisCache) InvalidateCatalog(ctx context.Context) error {
	return c.client.Del(ctx, cruisesKey, destinationsKey).Err()
}

func (c *RedisCache) AcquireCheckoutLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, checkoutLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseCheckoutLock(ctx context.Context, bookingID int64) error {
	return c.client.Del(ctx, checkoutLockKey(bookingID)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.catalogTTL).Err()
}

func checkoutLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d:checkout", bookingID)
}

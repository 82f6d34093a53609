package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/redis/go-redis/v9"
)

const navItemsKey = "nav:items"

// MenuCache keeps the rendered navigation bar out of the database hot
// path. The nav menu is read on every storefront page and changes only
// through admin action.
type MenuCache interface {
	GetNavItems(ctx context.Context) ([]models.NavItem, error) // nil slice on miss
	SetNavItems(ctx context.Context, items []models.NavItem) error
	Invalidate(ctx context.Context) error
	Close() error
}

// RedisMenuCache implements MenuCache on a Redis instance.
type RedisMenuCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMenuCache(redisURL string, ttl time.Duration) (*RedisMenuCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisMenuCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Client exposes the underlying Redis client for collaborators that
// share the connection (rate limiter).
func (c *RedisMenuCache) Client() *redis.Client {
	return c.client
}

func (c *RedisMenuCache) GetNavItems(ctx context.Context) ([]models.NavItem, error) {
	data, err := c.client.Get(ctx, navItemsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var items []models.NavItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Stale or corrupt payload; treat as a miss so it gets rewritten.
		return nil, nil
	}

	return items, nil
}

func (c *RedisMenuCache) SetNavItems(ctx context.Context, items []models.NavItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, navItemsKey, data, c.ttl).Err()
}

func (c *RedisMenuCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, navItemsKey).Err()
}

func (c *RedisMenuCache) Close() error {
	return c.client.Close()
}

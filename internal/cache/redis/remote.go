// Package redis implements the remote cache over one or more Redis nodes.
// With multiple addresses, plain keys route to a node by md5 shard; sorted
// sets always live on the node owning the set name so score updates stay on
// one instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/api-sage/wallet-ledger-engine/internal/sharding"
)

type Cache struct {
	clients []*redis.Client
}

func New(addrs []string, password string, db int) (*Cache, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one redis address is required")
	}

	clients := make([]*redis.Client, 0, len(addrs))
	for _, addr := range addrs {
		clients = append(clients, redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}))
	}

	return &Cache{clients: clients}, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	for _, client := range c.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
		}
	}
	return nil
}

func (c *Cache) Close() error {
	var firstErr error
	for _, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.clientFor(key).Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

func (c *Cache) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.clientFor(key).Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.clientFor(key).Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (c *Cache) IncrementScore(ctx context.Context, set, member string) error {
	if err := c.clientFor(set).ZIncrBy(ctx, set, 1, member).Err(); err != nil {
		return fmt.Errorf("redis zincrby %q: %w", set, err)
	}
	return nil
}

func (c *Cache) TopScores(ctx context.Context, set string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	members, err := c.clientFor(set).ZRevRange(ctx, set, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange %q: %w", set, err)
	}
	return members, nil
}

func (c *Cache) clientFor(key string) *redis.Client {
	return c.clients[sharding.ShardFor(key, len(c.clients))]
}

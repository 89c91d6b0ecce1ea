package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotFound = fmt.Errorf("redis: key not found")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// SetJSON stores a JSON-encoded value under key with a TTL.
func (c *Client) SetJSON(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

// GetJSON loads the value stored under key into dest. Returns ErrNotFound
// when the key is absent or expired.
func (c *Client) GetJSON(key string, dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete removes a key.
func (c *Client) Delete(key string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

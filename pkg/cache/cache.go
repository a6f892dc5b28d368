// Package cache keeps computed similarity listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/fern/pkg/models"
)

const keyPrefix = "fern:similarity:"

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps the Redis client
type Client struct {
	rdb    *redis.Client
	addr   string
	logger ectologger.Logger
}

// NewClient creates a Redis client. The connection is checked by Start.
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		addr:   addr,
		logger: logger,
	}
}

func (c *Client) GetName() string     { return "redis" }
func (c *Client) DependsOn() []string { return nil }

// Start pings the server.
func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", c.addr, err)
	}
	c.logger.Infof("Connected to Redis at %s", c.addr)
	return nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Stop closes the connection.
func (c *Client) Stop(_ context.Context) error {
	return c.rdb.Close()
}

// GetPairs returns a cached listing. ok is false on a miss.
func (c *Client) GetPairs(ctx context.Context, key string) ([]models.SimilarPair, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	pairs, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return pairs, true, nil
}

// SetPairs stores a listing for ttl.
func (c *Client) SetPairs(ctx context.Context, key string, pairs []models.SimilarPair, ttl time.Duration) error {
	raw, err := encode(pairs)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, Key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every cached listing. Called after a reseed.
func (c *Client) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Key namespaces a listing key.
func Key(key string) string {
	return keyPrefix + key
}

func encode(pairs []models.SimilarPair) ([]byte, error) {
	if pairs == nil {
		pairs = []models.SimilarPair{}
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode similarity pairs: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) ([]models.SimilarPair, error) {
	var pairs []models.SimilarPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode similarity pairs: %w", err)
	}
	return pairs, nil
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client used here
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes events as JSON on Redis pub/sub channels
type RedisPublisher struct {
	rdb redisClient
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// NewRedisPublisher wraps an existing client; Close closes it
func NewRedisPublisher(rdb redisClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishJobIngested implements Publisher
func (p *RedisPublisher) PublishJobIngested(ctx context.Context, event JobIngested) error {
	event.Type = ChannelJobIngested
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ChannelJobIngested, err)
	}
	if err := p.rdb.Publish(ctx, ChannelJobIngested, payload).Err(); err != nil {
		return fmt.Errorf("publish %s failed: %w", ChannelJobIngested, err)
	}
	return nil
}

// Close closes the underlying client
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Package events implements the Redis pub/sub event channel.
package events

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes fire-and-forget domain events over Redis
// pub/sub. Subscribers that are down simply miss the message; there is no
// retry or redelivery.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, payload string) error {
	return p.rdb.Publish(ctx, channel, payload).Err()
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

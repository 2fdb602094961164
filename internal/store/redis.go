package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis implements ListStore on top of Redis lists.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Push(ctx context.Context, key, value string) error {
	return s.client.RPush(ctx, key, value).Err()
}

func (s *Redis) PushHead(ctx context.Context, key, value string) error {
	return s.client.LPush(ctx, key, value).Err()
}

func (s *Redis) Range(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, key, 0, -1).Result()
}

func (s *Redis) RemoveOne(ctx context.Context, key, value string) (bool, error) {
	n, err := s.client.LRem(ctx, key, 1, value).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

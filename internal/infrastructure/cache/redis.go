package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// NewRedisClient creates a Redis client and checks the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	return client, nil
}

// RedisSpeakerCache stores speaker directories as JSON strings in Redis
type RedisSpeakerCache struct {
	client *redis.Client
}

// NewRedisSpeakerCache creates a new Redis backed speaker cache
func NewRedisSpeakerCache(client *redis.Client) *RedisSpeakerCache {
	return &RedisSpeakerCache{client: client}
}

// GetSpeakers returns the cached directory for key
func (c *RedisSpeakerCache) GetSpeakers(ctx context.Context, key string) (entities.SpeakerDirectory, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read speakers %s: %w", key, err)
	}

	var dir entities.SpeakerDirectory
	if err := json.Unmarshal(raw, &dir); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached speakers %s: %w", key, err)
	}
	return dir, true, nil
}

// SetSpeakers caches dir under key for ttl
func (c *RedisSpeakerCache) SetSpeakers(ctx context.Context, key string, dir entities.SpeakerDirectory, ttl time.Duration) error {
	raw, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("failed to encode speakers: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache speakers %s: %w", key, err)
	}
	return nil
}

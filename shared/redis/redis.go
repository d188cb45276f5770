package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"virtual-therapy-demo/backend/pkg/config"
)

const clipKeyPrefix = "audio:clip:"

// Client wraps the Redis connection used for expiring audio clip storage.
type Client struct {
	client *redis.Client
}

// NewClient connects using the application configuration.
func NewClient() *Client {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &Client{client: client}
}

// Ping checks connectivity, used by the health endpoint.
func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PutClip stores audio bytes under the clip id with a TTL.
func (r *Client) PutClip(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, clipKeyPrefix+id, data, ttl).Err()
}

// GetClip retrieves audio bytes for a clip id. Missing or expired clips
// return an error.
func (r *Client) GetClip(ctx context.Context, id string) ([]byte, error) {
	return r.client.Get(ctx, clipKeyPrefix+id).Bytes()
}

// DeleteClip removes a clip before its TTL elapses.
func (r *Client) DeleteClip(ctx context.Context, id string) error {
	return r.client.Del(ctx, clipKeyPrefix+id).Err()
}

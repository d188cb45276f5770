package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClipMissing is returned when a clip id is not present in the cache.
var ErrClipMissing = errors.New("clip not in cache")

// ClipStore adapts the in-memory cache to the audio clip store contract.
// It is used when Redis is not configured, e.g. in development.
type ClipStore struct {
	cache *Cache
}

// NewClipStore wraps the given cache as a clip store.
func NewClipStore(c *Cache) *ClipStore {
	return &ClipStore{cache: c}
}

// PutClip stores clip bytes with the given TTL.
func (s *ClipStore) PutClip(_ context.Context, id string, data []byte, ttl time.Duration) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.cache.SetWithExpiration("clip:"+id, buf, ttl)
	return nil
}

// GetClip returns the clip bytes, or ErrClipMissing if absent or expired.
func (s *ClipStore) GetClip(_ context.Context, id string) ([]byte, error) {
	v, ok := s.cache.Get("clip:" + id)
	if !ok {
		return nil, ErrClipMissing
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, ErrClipMissing
	}
	return data, nil
}

// DeleteClip evicts a clip before its TTL elapses.
func (s *ClipStore) DeleteClip(_ context.Context, id string) error {
	s.cache.Delete("clip:" + id)
	return nil
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *Cache {
	return &Cache{
		items:             make(map[string]Item),
		defaultExpiration: time.Minute,
		maxItems:          100,
	}
}

func TestClipStoreRoundTrip(t *testing.T) {
	store := NewClipStore(newTestCache())

	data := []byte{0x49, 0x44, 0x33, 0x04}
	require.NoError(t, store.PutClip(context.Background(), "abc123", data, time.Minute))

	got, err := store.GetClip(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestClipStoreMissing(t *testing.T) {
	store := NewClipStore(newTestCache())

	_, err := store.GetClip(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrClipMissing)
}

func TestClipStoreCopiesData(t *testing.T) {
	store := NewClipStore(newTestCache())

	data := []byte("original")
	require.NoError(t, store.PutClip(context.Background(), "clip", data, time.Minute))
	data[0] = 'X'

	got, err := store.GetClip(context.Background(), "clip")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestClipStoreDelete(t *testing.T) {
	store := NewClipStore(newTestCache())

	require.NoError(t, store.PutClip(context.Background(), "gone", []byte("x"), time.Minute))
	require.NoError(t, store.DeleteClip(context.Background(), "gone"))

	_, err := store.GetClip(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrClipMissing)
}

func TestClipStoreExpiration(t *testing.T) {
	store := NewClipStore(newTestCache())

	require.NoError(t, store.PutClip(context.Background(), "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := store.GetClip(context.Background(), "short")
	assert.ErrorIs(t, err, ErrClipMissing)
}

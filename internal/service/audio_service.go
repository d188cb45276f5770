package service

import (
	"context"
	"errors"
	"time"

	"virtual-therapy-demo/backend/internal/models"

	"gorm.io/gorm"
)

var ErrClipNotFound = errors.New("audio clip not found")

// ClipStore holds raw audio bytes under a clip id with a TTL. The Redis
// client and the in-memory cache both satisfy it.
type ClipStore interface {
	PutClip(ctx context.Context, id string, data []byte, ttl time.Duration) error
	GetClip(ctx context.Context, id string) ([]byte, error)
	DeleteClip(ctx context.Context, id string) error
}

// AudioServiceConfig defines configuration for the audio clip service
type AudioServiceConfig struct {
	DefaultTTL time.Duration
}

// DefaultAudioServiceConfig returns default configuration
func DefaultAudioServiceConfig() AudioServiceConfig {
	return AudioServiceConfig{DefaultTTL: 24 * time.Hour}
}

// AudioService tracks audio clips: metadata in Postgres, bytes in the clip
// store where they expire on their own.
type AudioService struct {
	db     *gorm.DB
	store  ClipStore
	config AudioServiceConfig
}

// NewAudioService creates a new audio clip service
func NewAudioService(db *gorm.DB, store ClipStore, config AudioServiceConfig) *AudioService {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = DefaultAudioServiceConfig().DefaultTTL
	}
	return &AudioService{db: db, store: store, config: config}
}

// StoreClip saves clip bytes under clipID and records its metadata. Storing
// the same clip id twice refreshes the bytes and keeps the existing record.
func (s *AudioService) StoreClip(ctx context.Context, clipID string, data []byte, messageID *uint, filename, contentType string, kind models.AudioClipKind) (*models.AudioClip, error) {
	if len(data) == 0 {
		return nil, errors.New("audio data cannot be empty")
	}

	if err := s.store.PutClip(ctx, clipID, data, s.config.DefaultTTL); err != nil {
		return nil, err
	}

	var clip models.AudioClip
	err := s.db.Where("clip_id = ?", clipID).First(&clip).Error
	if err == nil {
		return &clip, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	clip = models.AudioClip{
		ClipID:      clipID,
		MessageID:   messageID,
		Filename:    filename,
		ContentType: contentType,
		Size:        len(data),
		Kind:        kind,
	}
	if err := s.db.Create(&clip).Error; err != nil {
		// Bytes without a metadata row are unreachable, evict them.
		_ = s.store.DeleteClip(ctx, clipID)
		return nil, err
	}
	return &clip, nil
}

// GetClip returns the clip bytes and content type for serving. A metadata
// row without bytes means the clip has expired.
func (s *AudioService) GetClip(ctx context.Context, clipID string) ([]byte, string, error) {
	var clip models.AudioClip
	if err := s.db.Where("clip_id = ?", clipID).First(&clip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClipNotFound
		}
		return nil, "", err
	}

	data, err := s.store.GetClip(ctx, clipID)
	if err != nil {
		return nil, "", ErrClipNotFound
	}
	return data, clip.ContentType, nil
}

package service

import (
	"errors"

	"virtual-therapy-demo/backend/internal/models"

	"gorm.io/gorm"
)

// settingsStore isolates the queries behind GetOrCreate and Update so the
// create-once behavior stays coverable without a database.
type settingsStore interface {
	userExists(userID uint) (bool, error)
	findByUser(userID uint) (*models.UserSettings, error)
	create(settings *models.UserSettings) error
	save(settings *models.UserSettings) error
}

// SettingsService handles per-user settings persistence
type SettingsService struct {
	store settingsStore
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{store: gormSettingsStore{db: db}}
}

// GetOrCreate returns the user's settings row, creating it with the
// documented defaults on first read. Subsequent reads return the same row.
func (s *SettingsService) GetOrCreate(userID uint) (*models.UserSettings, error) {
	exists, err := s.store.userExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	settings, err := s.store.findByUser(userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	created := models.DefaultSettings(userID)
	if err := s.store.create(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update: only the supplied fields change, and
// UpdatedAt refreshes. Untouched fields keep their stored values.
func (s *SettingsService) Update(userID uint, req *models.UpdateSettingsRequest) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if !req.Apply(settings) {
		return settings, nil
	}

	if err := s.store.save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

type gormSettingsStore struct {
	db *gorm.DB
}

func (g gormSettingsStore) userExists(userID uint) (bool, error) {
	var user models.User
	err := g.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// findByUser returns nil without an error when the user has no settings row
// yet.
func (g gormSettingsStore) findByUser(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := g.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (g gormSettingsStore) create(settings *models.UserSettings) error {
	return g.db.Create(settings).Error
}

func (g gormSettingsStore) save(settings *models.UserSettings) error {
	return g.db.Save(settings).Error
}

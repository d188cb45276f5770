package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtual-therapy-demo/backend/internal/models"
)

type fakeSettingsStore struct {
	users   map[uint]bool
	rows    map[uint]*models.UserSettings
	creates int
	saves   int
}

func newFakeSettingsStore(userIDs ...uint) *fakeSettingsStore {
	users := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeSettingsStore{users: users, rows: make(map[uint]*models.UserSettings)}
}

func (f *fakeSettingsStore) userExists(userID uint) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeSettingsStore) findByUser(userID uint) (*models.UserSettings, error) {
	return f.rows[userID], nil
}

func (f *fakeSettingsStore) create(settings *models.UserSettings) error {
	f.creates++
	settings.ID = uint(f.creates)
	f.rows[settings.UserID] = settings
	return nil
}

func (f *fakeSettingsStore) save(settings *models.UserSettings) error {
	f.saves++
	f.rows[settings.UserID] = settings
	return nil
}

func TestGetOrCreateCreatesDefaultsOnce(t *testing.T) {
	store := newFakeSettingsStore(7)
	svc := &SettingsService{store: store}

	first, err := svc.GetOrCreate(7)
	require.NoError(t, err)
	assert.True(t, first.VoiceEnabled)
	assert.Equal(t, 0.9, first.SpeechRate)
	assert.Equal(t, "en-US", first.Language)
	assert.Equal(t, "warm", first.TherapistPersonality)

	second, err := svc.GetOrCreate(7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.creates)
}

func TestGetOrCreateUnknownUser(t *testing.T) {
	store := newFakeSettingsStore()
	svc := &SettingsService{store: store}

	_, err := svc.GetOrCreate(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, store.creates)
}

func TestUpdateKeepsUntouchedFields(t *testing.T) {
	store := newFakeSettingsStore(7)
	svc := &SettingsService{store: store}

	rate := 1.2
	updated, err := svc.Update(7, &models.UpdateSettingsRequest{SpeechRate: &rate})
	require.NoError(t, err)

	assert.Equal(t, 1.2, updated.SpeechRate)
	assert.True(t, updated.VoiceEnabled)
	assert.Equal(t, "warm", updated.TherapistPersonality)
	assert.Equal(t, 1, store.saves)
}

func TestUpdateWithoutFieldsSkipsSave(t *testing.T) {
	store := newFakeSettingsStore(7)
	svc := &SettingsService{store: store}

	settings, err := svc.Update(7, &models.UpdateSettingsRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSettings(7).SpeechPitch, settings.SpeechPitch)
	assert.Equal(t, 0, store.saves)
}

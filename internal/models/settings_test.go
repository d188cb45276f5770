package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(7)

	assert.Equal(t, uint(7), s.UserID)
	assert.True(t, s.VoiceEnabled)
	assert.Equal(t, 0.9, s.SpeechRate)
	assert.Equal(t, 1.1, s.SpeechPitch)
	assert.Equal(t, "en-US", s.Language)
	assert.Equal(t, "warm", s.TherapistPersonality)
	assert.False(t, s.AudioVisualizationEnabled)
}

func TestUpdateSettingsApplyPartial(t *testing.T) {
	s := DefaultSettings(1)
	rate := 1.2
	personality := "analytical"

	req := UpdateSettingsRequest{
		SpeechRate:           &rate,
		TherapistPersonality: &personality,
	}

	changed := req.Apply(&s)

	assert.True(t, changed)
	assert.Equal(t, 1.2, s.SpeechRate)
	assert.Equal(t, "analytical", s.TherapistPersonality)
	// Untouched fields keep their values.
	assert.True(t, s.VoiceEnabled)
	assert.Equal(t, "en-US", s.Language)
}

func TestUpdateSettingsApplyEmptyIsNoop(t *testing.T) {
	s := DefaultSettings(1)

	var req UpdateSettingsRequest
	changed := req.Apply(&s)

	assert.False(t, changed)
	assert.Equal(t, DefaultSettings(1), s)
}

func TestValidMood(t *testing.T) {
	for _, m := range []Mood{MoodIdle, MoodListening, MoodSpeaking, MoodThinking, MoodHappy, MoodConcerned} {
		assert.True(t, ValidMood(m), string(m))
	}
	assert.False(t, ValidMood("ecstatic"))
	assert.False(t, ValidMood(""))
}

package models

import (
	"time"
)

// UserSettings holds per-user voice and therapist preferences. One row per
// user, created lazily with defaults on first read.
type UserSettings struct {
	ID                        uint      `gorm:"primaryKey" json:"id"`
	UserID                    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	VoiceEnabled              bool      `json:"voiceEnabled"`
	SpeechRate                float64   `json:"speechRate"`
	SpeechPitch               float64   `json:"speechPitch"`
	Language                  string    `json:"language"`
	TherapistPersonality      string    `json:"therapistPersonality"`
	AudioVisualizationEnabled bool      `json:"audioVisualizationEnabled"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// DefaultSettings returns the documented defaults for a new settings row.
func DefaultSettings(userID uint) UserSettings {
	return UserSettings{
		UserID:                    userID,
		VoiceEnabled:              true,
		SpeechRate:                0.9,
		SpeechPitch:               1.1,
		Language:                  "en-US",
		TherapistPersonality:      "warm",
		AudioVisualizationEnabled: false,
	}
}

// UpdateSettingsRequest carries a partial settings update. Only non-nil
// fields are applied.
type UpdateSettingsRequest struct {
	VoiceEnabled              *bool    `json:"voiceEnabled"`
	SpeechRate                *float64 `json:"speechRate"`
	SpeechPitch               *float64 `json:"speechPitch"`
	Language                  *string  `json:"language"`
	TherapistPersonality      *string  `json:"therapistPersonality"`
	AudioVisualizationEnabled *bool    `json:"audioVisualizationEnabled"`
}

// Apply copies the supplied fields onto s and reports whether anything changed.
func (r *UpdateSettingsRequest) Apply(s *UserSettings) bool {
	changed := false
	if r.VoiceEnabled != nil {
		s.VoiceEnabled = *r.VoiceEnabled
		changed = true
	}
	if r.SpeechRate != nil {
		s.SpeechRate = *r.SpeechRate
		changed = true
	}
	if r.SpeechPitch != nil {
		s.SpeechPitch = *r.SpeechPitch
		changed = true
	}
	if r.Language != nil {
		s.Language = *r.Language
		changed = true
	}
	if r.TherapistPersonality != nil {
		s.TherapistPersonality = *r.TherapistPersonality
		changed = true
	}
	if r.AudioVisualizationEnabled != nil {
		s.AudioVisualizationEnabled = *r.AudioVisualizationEnabled
		changed = true
	}
	return changed
}

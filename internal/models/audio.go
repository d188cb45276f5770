package models

import (
	"time"
)

// AudioClipKind distinguishes uploaded user audio from synthesized replies.
type AudioClipKind string

const (
	AudioClipInput    AudioClipKind = "input"
	AudioClipResponse AudioClipKind = "response"
)

// AudioClip records a piece of audio associated with the chat. The bytes
// themselves live in the clip store (Redis) under ClipID with a TTL; this row
// only tracks metadata so expired clips can be reported as gone.
type AudioClip struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ClipID      string        `gorm:"uniqueIndex;not null" json:"clipId"`
	MessageID   *uint         `gorm:"index" json:"messageId"`
	Filename    string        `json:"filename"`
	ContentType string        `json:"contentType"`
	Size        int           `json:"size"`
	Kind        AudioClipKind `gorm:"type:varchar(20)" json:"kind"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// SynthesizeRequest is the request structure for text-to-speech
type SynthesizeRequest struct {
	Text  string  `json:"text" binding:"required"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// TranscriptionResponse is returned from speech-to-text
type TranscriptionResponse struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

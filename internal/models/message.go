package models

import (
	"time"
)

// Mood is the therapist character's animation state attached to a message.
type Mood string

const (
	MoodIdle      Mood = "idle"
	MoodListening Mood = "listening"
	MoodSpeaking  Mood = "speaking"
	MoodThinking  Mood = "thinking"
	MoodHappy     Mood = "happy"
	MoodConcerned Mood = "concerned"
)

// ValidMood reports whether m is one of the known mood values.
func ValidMood(m Mood) bool {
	switch m {
	case MoodIdle, MoodListening, MoodSpeaking, MoodThinking, MoodHappy, MoodConcerned:
		return true
	}
	return false
}

// TherapyMessage is one turn in a session. Messages are append-only and
// ordered by CreatedAt within their session.
type TherapyMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index;not null" json:"sessionId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsUser    bool      `gorm:"not null" json:"isUser"`
	Mood      *Mood     `gorm:"type:varchar(50)" json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateMessageRequest is the request structure for appending a message
type CreateMessageRequest struct {
	SessionID uint   `json:"sessionId" binding:"required"`
	Content   string `json:"content" binding:"required"`
	IsUser    *bool  `json:"isUser" binding:"required"`
	Mood      *Mood  `json:"mood"`
}

// ChatRequest is the request structure for a full chat turn
type ChatRequest struct {
	Message              string `json:"message" binding:"required"`
	SessionID            *uint  `json:"sessionId"`
	UserID               *uint  `json:"userId"`
	TherapistPersonality string `json:"therapistPersonality"`
	Language             string `json:"language"`
}

// ChatResponse is returned from a chat turn
type ChatResponse struct {
	Response      string `json:"response"`
	SessionID     uint   `json:"sessionId"`
	MessageID     uint   `json:"messageId"`
	CharacterMood Mood   `json:"characterMood"`
	SessionTitle  string `json:"sessionTitle"`
	AudioURL      string `json:"audioUrl,omitempty"`
}

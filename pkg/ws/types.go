package ws

import (
	"time"
)

// Envelope is the wire format for every WebSocket frame in both directions.
type Envelope struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content,omitempty"`
}

// ChatPayload is the content of an inbound "chat" frame.
type ChatPayload struct {
	Message              string `json:"message"`
	TherapistPersonality string `json:"therapistPersonality,omitempty"`
	Language             string `json:"language,omitempty"`
}

// ReplyPayload is the content of an outbound "reply" frame.
type ReplyPayload struct {
	Response      string    `json:"response"`
	MessageID     uint      `json:"messageId"`
	SessionID     uint      `json:"sessionId"`
	CharacterMood string    `json:"characterMood"`
	SessionTitle  string    `json:"sessionTitle,omitempty"`
	AudioURL      string    `json:"audioUrl,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// HistoryMessage is one prior message replayed on connect.
type HistoryMessage struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Mood      string    `json:"mood,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryPayload is the content of the "history" frame sent after a client
// attaches to an existing session.
type HistoryPayload struct {
	SessionID uint             `json:"sessionId"`
	Messages  []HistoryMessage `json:"messages"`
}

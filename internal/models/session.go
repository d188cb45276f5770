package models

import (
	"time"
)

// TherapySession groups an ordered conversation between a user and the
// virtual therapist. UserID is nullable so anonymous demo sessions work.
type TherapySession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateSessionRequest is the request structure for starting a session
type CreateSessionRequest struct {
	UserID *uint  `json:"userId"`
	Title  string `json:"title" binding:"required"`
}

// RenameSessionRequest is the request structure for renaming a session
type RenameSessionRequest struct {
	Title string `json:"title" binding:"required"`
}

// SessionResponse is the response structure for session data
type SessionResponse struct {
	ID           uint      `json:"id"`
	UserID       *uint     `json:"userId"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int64     `json:"messageCount"`
}

// ToResponse converts a TherapySession to a SessionResponse
func (s *TherapySession) ToResponse(messageCount int64) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: messageCount,
	}
}

package service

import (
	"errors"
	"time"

	"virtual-therapy-demo/backend/internal/models"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// maxTitleLength bounds auto-generated session titles.
const maxTitleLength = 50

// SessionService handles therapy session persistence
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession starts a new therapy session
func (s *SessionService) CreateSession(userID *uint, title string) (*models.TherapySession, error) {
	if title == "" {
		title = "New Therapy Session"
	}
	session := &models.TherapySession{
		UserID: userID,
		Title:  title,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a session by ID together with its message count
func (s *SessionService) GetSession(id uint) (*models.TherapySession, int64, error) {
	var session models.TherapySession
	result := s.db.First(&session, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, 0, ErrSessionNotFound
		}
		return nil, 0, result.Error
	}

	var count int64
	if err := s.db.Model(&models.TherapyMessage{}).Where("session_id = ?", id).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	return &session, count, nil
}

// ListUserSessions returns a user's sessions, most recently updated first
func (s *SessionService) ListUserSessions(userID uint) ([]models.SessionResponse, error) {
	var sessions []models.TherapySession
	result := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	responses := make([]models.SessionResponse, 0, len(sessions))
	for i := range sessions {
		var count int64
		if err := s.db.Model(&models.TherapyMessage{}).Where("session_id = ?", sessions[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}
		responses = append(responses, sessions[i].ToResponse(count))
	}
	return responses, nil
}

// RenameSession updates a session title and bumps UpdatedAt. CreatedAt and
// the message list are untouched.
func (s *SessionService) RenameSession(id uint, title string) error {
	result := s.db.Model(&models.TherapySession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Touch bumps a session's UpdatedAt, optionally retitling it. Used by the
// chat flow after appending messages.
func (s *SessionService) Touch(id uint, newTitle string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if newTitle != "" {
		updates["title"] = newTitle
	}
	result := s.db.Model(&models.TherapySession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// TitleFromMessage derives a session title from the first user message.
func TitleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLength {
		return message
	}
	return string(runes[:maxTitleLength]) + "..."
}

package service

import (
	"errors"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"

	"gorm.io/gorm"
)

var ErrInvalidMood = errors.New("unknown mood value")

// MessageService handles therapy message persistence
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a new message service
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// CreateMessage appends a message to a session. The session must exist;
// messages are immutable once created.
func (s *MessageService) CreateMessage(sessionID uint, content string, isUser bool, mood *models.Mood) (*models.TherapyMessage, error) {
	if mood != nil && !models.ValidMood(*mood) {
		return nil, ErrInvalidMood
	}

	var session models.TherapySession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	message := &models.TherapyMessage{
		SessionID: sessionID,
		Content:   content,
		IsUser:    isUser,
		Mood:      mood,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}

	// Keep the session's recency ordering correct.
	if err := s.db.Model(&session).Update("updated_at", message.CreatedAt).Error; err != nil {
		return nil, err
	}

	return message, nil
}

// ListSessionMessages returns a session's messages in chronological order
func (s *MessageService) ListSessionMessages(sessionID uint) ([]models.TherapyMessage, error) {
	var session models.TherapySession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var messages []models.TherapyMessage
	result := s.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// RecentExchanges converts the tail of a session's history into user/reply
// pairs for prompt construction. Pairs are returned oldest first.
func (s *MessageService) RecentExchanges(sessionID uint, limit int) ([]ai.Exchange, error) {
	var messages []models.TherapyMessage
	result := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit * 2).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	return pairExchanges(messages, limit), nil
}

// pairExchanges reverses a newest-first message window into chronological
// order and pairs each user message with the assistant reply that follows
// it, keeping at most limit pairs. Unanswered user messages are skipped.
func pairExchanges(messages []models.TherapyMessage, limit int) []ai.Exchange {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	var exchanges []ai.Exchange
	for i := 0; i < len(messages)-1; i++ {
		if messages[i].IsUser && !messages[i+1].IsUser {
			exchanges = append(exchanges, ai.Exchange{
				UserMessage: messages[i].Content,
				Reply:       messages[i+1].Content,
				Timestamp:   messages[i].CreatedAt,
			})
			i++
		}
	}
	if len(exchanges) > limit {
		exchanges = exchanges[len(exchanges)-limit:]
	}
	return exchanges
}

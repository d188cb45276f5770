package api

import (
	"errors"
	"net/http"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/mood"
	"virtual-therapy-demo/backend/internal/service"
	"virtual-therapy-demo/backend/pkg/config"
	"virtual-therapy-demo/backend/pkg/logger"
	"virtual-therapy-demo/backend/shared/observability"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles message endpoints, including the composite chat
// turn that drives the conversation.
type MessageHandler struct {
	messages   *service.MessageService
	sessions   *service.SessionService
	settings   *service.SettingsService
	audio      *service.AudioService
	ai         *ai.Service
	classifier *mood.Classifier
	logger     *logger.Logger

	historyExchanges int
	synthesisEnabled bool
	defaultVoice     string
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	messages *service.MessageService,
	sessions *service.SessionService,
	settings *service.SettingsService,
	audio *service.AudioService,
	aiService *ai.Service,
	classifier *mood.Classifier,
	logger *logger.Logger,
) *MessageHandler {
	cfg := config.Get()
	return &MessageHandler{
		messages:         messages,
		sessions:         sessions,
		settings:         settings,
		audio:            audio,
		ai:               aiService,
		classifier:       classifier,
		logger:           logger,
		historyExchanges: cfg.Features.HistoryExchanges,
		synthesisEnabled: cfg.Features.EnableSynthesis,
		defaultVoice:     cfg.Audio.DefaultVoice,
	}
}

// Append stores a single message without generating a reply
func (h *MessageHandler) Append(c *gin.Context) {
	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	message, err := h.messages.CreateMessage(req.SessionID, req.Content, *req.IsUser, req.Mood)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case service.ErrInvalidMood:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown mood value"})
		default:
			h.logger.Error("Error creating message", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		}
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ListForSession returns a session's messages in chronological order
func (h *MessageHandler) ListForSession(c *gin.Context) {
	sessionID, err := parseUintParam(c, "sessionId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID must be a number"})
		return
	}

	messages, err := h.messages.ListSessionMessages(sessionID)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			h.logger.Error("Error listing messages", "error", err.Error(), "sessionID", sessionID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// Chat runs a full conversation turn: it stores the user's message, asks the
// response service for a reply, stores that reply with its mood, and
// optionally synthesizes an audio clip of the reply.
func (h *MessageHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, messageCount, newSession, err := h.resolveSession(&req)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			h.logger.Error("Error resolving chat session", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start chat turn"})
		}
		return
	}

	// History is read before the new user message lands so the current turn
	// is not duplicated into it.
	history, err := h.messages.RecentExchanges(session.ID, h.historyExchanges)
	if err != nil {
		h.logger.Warn("Could not load conversation history", "error", err.Error(), "sessionID", session.ID)
	}

	if _, err := h.messages.CreateMessage(session.ID, req.Message, true, nil); err != nil {
		h.logger.Error("Error storing user message", "error", err.Error(), "sessionID", session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	personality, language, voiceEnabled, speechRate := h.resolvePreferences(&req)

	result := h.ai.Generate(c.Request.Context(), ai.GenerateInput{
		UserMessage: req.Message,
		History:     history,
		Personality: ai.NormalizePersonality(personality),
		Language:    language,
	})

	text, replyMood := h.moodFor(result, req.Message)

	aiMessage, err := h.messages.CreateMessage(session.ID, text, false, &replyMood)
	if err != nil {
		h.logger.Error("Error storing reply", "error", err.Error(), "sessionID", session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reply"})
		return
	}

	// The first user message names an untitled session.
	sessionTitle := session.Title
	if !newSession && messageCount == 0 {
		sessionTitle = service.TitleFromMessage(req.Message)
		if err := h.sessions.Touch(session.ID, sessionTitle); err != nil {
			h.logger.Warn("Could not update session title", "error", err.Error(), "sessionID", session.ID)
			sessionTitle = session.Title
		}
	}

	audioURL := h.maybeSynthesize(c, text, aiMessage.ID, voiceEnabled, speechRate)

	observability.ObserveChatTurn(result.Source, string(replyMood))

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:      text,
		SessionID:     session.ID,
		MessageID:     aiMessage.ID,
		CharacterMood: replyMood,
		SessionTitle:  sessionTitle,
		AudioURL:      audioURL,
	})
}

// resolveSession loads the requested session or creates a new one titled
// after the incoming message.
func (h *MessageHandler) resolveSession(req *models.ChatRequest) (*models.TherapySession, int64, bool, error) {
	if req.SessionID != nil {
		session, count, err := h.sessions.GetSession(*req.SessionID)
		return session, count, false, err
	}
	session, err := h.sessions.CreateSession(req.UserID, service.TitleFromMessage(req.Message))
	return session, 0, true, err
}

// resolvePreferences merges per-request overrides over the user's stored
// settings. Without a user the settings defaults apply.
func (h *MessageHandler) resolvePreferences(req *models.ChatRequest) (personality, language string, voiceEnabled bool, speechRate float64) {
	personality = req.TherapistPersonality
	language = req.Language
	voiceEnabled = true
	speechRate = 0.9

	if req.UserID != nil {
		if settings, err := h.settings.GetOrCreate(*req.UserID); err == nil {
			if personality == "" {
				personality = settings.TherapistPersonality
			}
			if language == "" {
				language = settings.Language
			}
			voiceEnabled = settings.VoiceEnabled
			speechRate = settings.SpeechRate
		} else if !errors.Is(err, service.ErrUserNotFound) {
			h.logger.Warn("Could not load user settings", "error", err.Error(), "userID", *req.UserID)
		}
	}
	if language == "" {
		language = "en-US"
	}
	return personality, language, voiceEnabled, speechRate
}

// moodFor derives the reply text and mood from a generation result. A crisis
// reply is always concerned; otherwise the model's mood marker wins and the
// keyword classifier covers replies without one.
func (h *MessageHandler) moodFor(result ai.GenerateResult, userMessage string) (string, models.Mood) {
	if result.Source == "crisis" {
		return result.Response, models.MoodConcerned
	}

	text, marker, ok := ai.SplitMoodMarker(result.Response)
	if ok && models.ValidMood(models.Mood(marker)) {
		return text, models.Mood(marker)
	}
	return text, h.classifier.Classify(text, userMessage)
}

// maybeSynthesize produces an audio clip of the reply when voice output is
// on. Synthesis failures never fail the chat turn.
func (h *MessageHandler) maybeSynthesize(c *gin.Context, text string, messageID uint, voiceEnabled bool, speechRate float64) string {
	if !h.synthesisEnabled || !voiceEnabled {
		return ""
	}

	ctx := c.Request.Context()
	data, err := h.ai.TextToSpeech(ctx, text, h.defaultVoice, speechRate)
	if err != nil {
		if !errors.Is(err, ai.ErrSpeechUnavailable) {
			h.logger.Warn("Reply synthesis failed", "error", err.Error(), "messageID", messageID)
		}
		return ""
	}

	clipID := ai.ClipID(text, h.defaultVoice, speechRate)
	if _, err := h.audio.StoreClip(ctx, clipID, data, &messageID, clipID+".mp3", "audio/mpeg", models.AudioClipResponse); err != nil {
		h.logger.Warn("Could not store synthesized clip", "error", err.Error(), "messageID", messageID)
		return ""
	}

	observability.ObserveSynthesis()
	return "/api/audio/clips/" + clipID
}

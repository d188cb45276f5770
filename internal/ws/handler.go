package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/service"
	"virtual-therapy-demo/backend/pkg/logger"
	wswire "virtual-therapy-demo/backend/pkg/ws"
	"virtual-therapy-demo/backend/shared/observability"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Per-turn budget covering generation and optional synthesis
	turnTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// MessageStore persists conversation turns.
type MessageStore interface {
	CreateMessage(sessionID uint, content string, isUser bool, mood *models.Mood) (*models.TherapyMessage, error)
	ListSessionMessages(sessionID uint) ([]models.TherapyMessage, error)
	RecentExchanges(sessionID uint, limit int) ([]ai.Exchange, error)
}

// SessionStore resolves and creates therapy sessions.
type SessionStore interface {
	CreateSession(userID *uint, title string) (*models.TherapySession, error)
	GetSession(id uint) (*models.TherapySession, int64, error)
	Touch(id uint, newTitle string) error
}

// SettingsStore reads user preferences for personality and voice.
type SettingsStore interface {
	GetOrCreate(userID uint) (*models.UserSettings, error)
}

// Responder generates therapist replies.
type Responder interface {
	Generate(ctx context.Context, input ai.GenerateInput) ai.GenerateResult
	TextToSpeech(ctx context.Context, text, voice string, speed float64) ([]byte, error)
}

// MoodClassifier assigns a mood to replies without a usable mood marker.
type MoodClassifier interface {
	Classify(replyText, userText string) models.Mood
}

// ClipSaver stores synthesized reply audio for later retrieval over HTTP.
type ClipSaver interface {
	StoreClip(ctx context.Context, clipID string, data []byte, messageID *uint, filename, contentType string, kind models.AudioClipKind) (*models.AudioClip, error)
}

// Hub tracks connected chat clients and owns the services a turn needs.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	messages   MessageStore
	sessions   SessionStore
	settings   SettingsStore
	responder  Responder
	classifier MoodClassifier
	clips      ClipSaver
	logger     *logger.Logger

	historyExchanges int
	synthesisEnabled bool
	defaultVoice     string

	mu sync.Mutex
}

// HubConfig carries the tunables the hub reads per turn.
type HubConfig struct {
	HistoryExchanges int
	SynthesisEnabled bool
	DefaultVoice     string
}

// NewHub creates a chat hub.
func NewHub(
	messages MessageStore,
	sessions SessionStore,
	settings SettingsStore,
	responder Responder,
	classifier MoodClassifier,
	clips ClipSaver,
	log *logger.Logger,
	cfg HubConfig,
) *Hub {
	if cfg.HistoryExchanges <= 0 {
		cfg.HistoryExchanges = 6
	}
	return &Hub{
		clients:          make(map[*Client]bool),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		messages:         messages,
		sessions:         sessions,
		settings:         settings,
		responder:        responder,
		classifier:       classifier,
		clips:            clips,
		logger:           log,
		historyExchanges: cfg.HistoryExchanges,
		synthesisEnabled: cfg.SynthesisEnabled,
		defaultVoice:     cfg.DefaultVoice,
	}
}

// Run processes client registration until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected", "clientID", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket client disconnected", "clientID", client.ID)
		}
	}
}

// ActiveConnections returns the number of connected clients.
func (h *Hub) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Client is one WebSocket connection bound to at most one session.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	UserID *uint

	mu        sync.Mutex
	closed    bool
	sessionID *uint
}

// closeSend shuts the outbound queue exactly once. A chat turn can still be
// in flight when the peer disconnects; guarding the close under the client
// mutex lets that turn drop its frames instead of hitting a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) currentSession() *uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) attachSession(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = &id
}

// ReadPump reads frames from the peer until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket read failed", "clientID", c.ID, "error", err.Error())
			}
			break
		}

		var envelope wswire.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.sendError("Invalid message format")
			continue
		}

		go c.handleEnvelope(envelope)
	}
}

func (c *Client) handleEnvelope(envelope wswire.Envelope) {
	switch envelope.Type {
	case "chat":
		c.handleChat(envelope)
	case "ping":
		c.send("pong", nil)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

// handleChat runs one conversation turn over the socket: acknowledge with a
// thinking frame, persist the user message, generate, persist the reply and
// send it back.
func (c *Client) handleChat(envelope wswire.Envelope) {
	var payload wswire.ChatPayload
	contentBytes, err := json.Marshal(envelope.Content)
	if err == nil {
		err = json.Unmarshal(contentBytes, &payload)
	}
	if err != nil || payload.Message == "" {
		c.sendError("A chat message is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	h := c.Hub

	sessionID, sessionTitle, firstMessage, err := c.resolveSession(payload.Message)
	if err != nil {
		h.logger.Error("Could not resolve chat session", "clientID", c.ID, "error", err.Error())
		c.sendError("Failed to start chat turn")
		return
	}

	c.send("thinking", nil)

	history, err := h.messages.RecentExchanges(sessionID, h.historyExchanges)
	if err != nil {
		h.logger.Warn("Could not load conversation history", "sessionID", sessionID, "error", err.Error())
	}

	if _, err := h.messages.CreateMessage(sessionID, payload.Message, true, nil); err != nil {
		h.logger.Error("Could not store user message", "sessionID", sessionID, "error", err.Error())
		c.sendError("Failed to store message")
		return
	}

	personality, language, voiceEnabled, speechRate := c.resolvePreferences(&payload)

	result := h.responder.Generate(ctx, ai.GenerateInput{
		UserMessage: payload.Message,
		History:     history,
		Personality: ai.NormalizePersonality(personality),
		Language:    language,
	})

	text := result.Response
	var replyMood models.Mood
	if result.Source == "crisis" {
		replyMood = models.MoodConcerned
	} else {
		stripped, marker, ok := ai.SplitMoodMarker(result.Response)
		text = stripped
		if ok && models.ValidMood(models.Mood(marker)) {
			replyMood = models.Mood(marker)
		} else {
			replyMood = h.classifier.Classify(text, payload.Message)
		}
	}

	reply, err := h.messages.CreateMessage(sessionID, text, false, &replyMood)
	if err != nil {
		h.logger.Error("Could not store reply", "sessionID", sessionID, "error", err.Error())
		c.sendError("Failed to store reply")
		return
	}

	if firstMessage {
		sessionTitle = service.TitleFromMessage(payload.Message)
		if err := h.sessions.Touch(sessionID, sessionTitle); err != nil {
			h.logger.Warn("Could not update session title", "sessionID", sessionID, "error", err.Error())
		}
	}

	audioURL := ""
	if h.synthesisEnabled && voiceEnabled {
		audioURL = c.synthesizeReply(ctx, text, reply.ID, speechRate)
	}

	observability.ObserveChatTurn(result.Source, string(replyMood))

	c.send("reply", wswire.ReplyPayload{
		Response:      text,
		MessageID:     reply.ID,
		SessionID:     sessionID,
		CharacterMood: string(replyMood),
		SessionTitle:  sessionTitle,
		AudioURL:      audioURL,
		Timestamp:     reply.CreatedAt,
	})
}

// resolveSession returns the client's session, creating one on the first
// chat frame. firstMessage reports that the session has no messages yet and
// should take its title from this turn.
func (c *Client) resolveSession(message string) (uint, string, bool, error) {
	if id := c.currentSession(); id != nil {
		session, count, err := c.Hub.sessions.GetSession(*id)
		if err != nil {
			return 0, "", false, err
		}
		return session.ID, session.Title, count == 0, nil
	}

	session, err := c.Hub.sessions.CreateSession(c.UserID, service.TitleFromMessage(message))
	if err != nil {
		return 0, "", false, err
	}
	c.attachSession(session.ID)
	return session.ID, session.Title, false, nil
}

func (c *Client) resolvePreferences(payload *wswire.ChatPayload) (personality, language string, voiceEnabled bool, speechRate float64) {
	personality = payload.TherapistPersonality
	language = payload.Language
	voiceEnabled = true
	speechRate = 0.9

	if c.UserID != nil {
		if settings, err := c.Hub.settings.GetOrCreate(*c.UserID); err == nil {
			if personality == "" {
				personality = settings.TherapistPersonality
			}
			if language == "" {
				language = settings.Language
			}
			voiceEnabled = settings.VoiceEnabled
			speechRate = settings.SpeechRate
		}
	}
	if language == "" {
		language = "en-US"
	}
	return personality, language, voiceEnabled, speechRate
}

func (c *Client) synthesizeReply(ctx context.Context, text string, messageID uint, speechRate float64) string {
	h := c.Hub
	data, err := h.responder.TextToSpeech(ctx, text, h.defaultVoice, speechRate)
	if err != nil {
		if err != ai.ErrSpeechUnavailable {
			h.logger.Warn("Reply synthesis failed", "messageID", messageID, "error", err.Error())
		}
		return ""
	}

	clipID := ai.ClipID(text, h.defaultVoice, speechRate)
	if _, err := h.clips.StoreClip(ctx, clipID, data, &messageID, clipID+".mp3", "audio/mpeg", models.AudioClipResponse); err != nil {
		h.logger.Warn("Could not store synthesized clip", "messageID", messageID, "error", err.Error())
		return ""
	}

	observability.ObserveSynthesis()
	return "/api/audio/clips/" + clipID
}

func (c *Client) send(messageType string, content interface{}) {
	data, err := json.Marshal(wswire.Envelope{Type: messageType, Content: content})
	if err != nil {
		c.Hub.logger.Error("Could not marshal frame", "type", messageType, "error", err.Error())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn("Dropping frame for slow client", "clientID", c.ID, "type", messageType)
	}
}

func (c *Client) sendError(errorText string) {
	c.send("error", map[string]string{"message": errorText})
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain anything queued behind the first frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades an HTTP request to a chat connection. sessionId and
// userId query parameters are optional: without a session the first chat
// frame creates one.
func ServeWs(hub *Hub, c *gin.Context) {
	var userID *uint
	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be a number"})
			return
		}
		id := uint(parsed)
		userID = &id
	}

	var sessionID *uint
	if raw := c.Query("sessionId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId must be a number"})
			return
		}
		id := uint(parsed)
		if _, _, err := hub.sessions.GetSession(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		sessionID = &id
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", "error", err.Error())
		return
	}
	conn.EnableWriteCompression(true)

	client := &Client{
		ID:        uuid.NewString(),
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Hub:       hub,
		UserID:    userID,
		sessionID: sessionID,
	}

	hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	if sessionID != nil {
		client.sendHistory(*sessionID)
	}
}

// sendHistory replays an existing session's messages to a newly attached
// client.
func (c *Client) sendHistory(sessionID uint) {
	messages, err := c.Hub.messages.ListSessionMessages(sessionID)
	if err != nil {
		c.Hub.logger.Warn("Could not load session history", "sessionID", sessionID, "error", err.Error())
		return
	}
	if len(messages) == 0 {
		return
	}

	payload := wswire.HistoryPayload{SessionID: sessionID}
	for _, m := range messages {
		entry := wswire.HistoryMessage{
			ID:        m.ID,
			Content:   m.Content,
			IsUser:    m.IsUser,
			Timestamp: m.CreatedAt,
		}
		if m.Mood != nil {
			entry.Mood = string(*m.Mood)
		}
		payload.Messages = append(payload.Messages, entry)
	}
	c.send("history", payload)
}


package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/mood"
	"virtual-therapy-demo/backend/pkg/logger"
	wswire "virtual-therapy-demo/backend/pkg/ws"
)

type fakeMessages struct {
	created []models.TherapyMessage
}

func (f *fakeMessages) CreateMessage(sessionID uint, content string, isUser bool, m *models.Mood) (*models.TherapyMessage, error) {
	msg := models.TherapyMessage{
		ID:        uint(len(f.created) + 1),
		SessionID: sessionID,
		Content:   content,
		IsUser:    isUser,
		Mood:      m,
		CreatedAt: time.Now(),
	}
	f.created = append(f.created, msg)
	return &msg, nil
}

func (f *fakeMessages) ListSessionMessages(sessionID uint) ([]models.TherapyMessage, error) {
	return f.created, nil
}

func (f *fakeMessages) RecentExchanges(sessionID uint, limit int) ([]ai.Exchange, error) {
	return nil, nil
}

type fakeSessions struct {
	created      bool
	touchedTitle string
}

func (f *fakeSessions) CreateSession(userID *uint, title string) (*models.TherapySession, error) {
	f.created = true
	return &models.TherapySession{ID: 11, UserID: userID, Title: title}, nil
}

func (f *fakeSessions) GetSession(id uint) (*models.TherapySession, int64, error) {
	return &models.TherapySession{ID: id, Title: "Existing"}, 2, nil
}

func (f *fakeSessions) Touch(id uint, newTitle string) error {
	f.touchedTitle = newTitle
	return nil
}

type fakeSettings struct{}

func (fakeSettings) GetOrCreate(userID uint) (*models.UserSettings, error) {
	s := models.DefaultSettings(userID)
	return &s, nil
}

type fakeResponder struct {
	result ai.GenerateResult
}

func (f *fakeResponder) Generate(ctx context.Context, input ai.GenerateInput) ai.GenerateResult {
	return f.result
}

func (f *fakeResponder) TextToSpeech(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	return nil, ai.ErrSpeechUnavailable
}

type fakeClips struct{}

func (fakeClips) StoreClip(ctx context.Context, clipID string, data []byte, messageID *uint, filename, contentType string, kind models.AudioClipKind) (*models.AudioClip, error) {
	return &models.AudioClip{ClipID: clipID}, nil
}

func newTestHub(messages *fakeMessages, sessions *fakeSessions, responder *fakeResponder) *Hub {
	return NewHub(
		messages,
		sessions,
		fakeSettings{},
		responder,
		mood.NewClassifier(),
		fakeClips{},
		logger.New(logger.DefaultConfig()),
		HubConfig{HistoryExchanges: 6, SynthesisEnabled: false},
	)
}

func newTestClient(hub *Hub) *Client {
	return &Client{ID: "test-client", Send: make(chan []byte, 16), Hub: hub}
}

func readFrame(t *testing.T, c *Client) wswire.Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env wswire.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return wswire.Envelope{}
	}
}

func TestChatTurnSendsThinkingThenReply(t *testing.T) {
	messages := &fakeMessages{}
	sessions := &fakeSessions{}
	responder := &fakeResponder{result: ai.GenerateResult{
		Response: "That sounds hard. MOOD: concerned",
		Source:   "openai",
	}}
	client := newTestClient(newTestHub(messages, sessions, responder))

	client.handleChat(wswire.Envelope{
		Type:    "chat",
		Content: map[string]interface{}{"message": "I had a rough week"},
	})

	thinking := readFrame(t, client)
	assert.Equal(t, "thinking", thinking.Type)

	reply := readFrame(t, client)
	require.Equal(t, "reply", reply.Type)

	var payload wswire.ReplyPayload
	raw, _ := json.Marshal(reply.Content)
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "That sounds hard.", payload.Response)
	assert.Equal(t, "concerned", payload.CharacterMood)
	assert.Equal(t, uint(11), payload.SessionID)

	// First the user message, then the reply.
	require.Len(t, messages.created, 2)
	assert.True(t, messages.created[0].IsUser)
	assert.False(t, messages.created[1].IsUser)
	assert.True(t, sessions.created)
}

func TestChatTurnCrisisReply(t *testing.T) {
	messages := &fakeMessages{}
	responder := &fakeResponder{result: ai.GenerateResult{
		Response: ai.CrisisResponse,
		Source:   "crisis",
	}}
	client := newTestClient(newTestHub(messages, &fakeSessions{}, responder))

	client.handleChat(wswire.Envelope{
		Type:    "chat",
		Content: map[string]interface{}{"message": "I want to die"},
	})

	readFrame(t, client) // thinking

	reply := readFrame(t, client)
	var payload wswire.ReplyPayload
	raw, _ := json.Marshal(reply.Content)
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, ai.CrisisResponse, payload.Response)
	assert.Equal(t, "concerned", payload.CharacterMood)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	client := newTestClient(newTestHub(&fakeMessages{}, &fakeSessions{}, &fakeResponder{}))

	client.handleChat(wswire.Envelope{Type: "chat", Content: map[string]interface{}{}})

	frame := readFrame(t, client)
	assert.Equal(t, "error", frame.Type)
}

func TestSendAfterDisconnectDropsFrame(t *testing.T) {
	hub := newTestHub(&fakeMessages{}, &fakeSessions{}, &fakeResponder{})
	go hub.Run()

	client := newTestClient(hub)
	hub.register <- client
	hub.unregister <- client

	// Wait for the hub to close the outbound queue.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-client.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// A turn finishing after the disconnect must not panic on the closed
	// channel.
	require.NotPanics(t, func() {
		client.send("reply", wswire.ReplyPayload{Response: "Better late than never"})
		client.sendError("too late")
	})
}

func TestCloseSendIsIdempotent(t *testing.T) {
	client := newTestClient(newTestHub(&fakeMessages{}, &fakeSessions{}, &fakeResponder{}))

	require.NotPanics(t, func() {
		client.closeSend()
		client.closeSend()
	})
}

func TestPingAnswersPong(t *testing.T) {
	client := newTestClient(newTestHub(&fakeMessages{}, &fakeSessions{}, &fakeResponder{}))

	client.handleEnvelope(wswire.Envelope{Type: "ping"})

	frame := readFrame(t, client)
	assert.Equal(t, "pong", frame.Type)
}

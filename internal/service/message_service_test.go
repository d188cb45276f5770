package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtual-therapy-demo/backend/internal/models"
)

// newestFirst builds a message window the way the history query returns it:
// most recent message first.
func newestFirst(contents ...string) []models.TherapyMessage {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]models.TherapyMessage, 0, len(contents))
	for i, content := range contents {
		messages = append(messages, models.TherapyMessage{
			ID:        uint(len(contents) - i),
			Content:   content,
			IsUser:    (len(contents)-i)%2 == 1,
			CreatedAt: base.Add(time.Duration(len(contents)-i) * time.Minute),
		})
	}
	return messages
}

func TestPairExchangesChronologicalOrder(t *testing.T) {
	// Window arrives newest first: reply2, user2, reply1, user1.
	messages := newestFirst("reply two", "user two", "reply one", "user one")

	exchanges := pairExchanges(messages, 6)

	require.Len(t, exchanges, 2)
	assert.Equal(t, "user one", exchanges[0].UserMessage)
	assert.Equal(t, "reply one", exchanges[0].Reply)
	assert.Equal(t, "user two", exchanges[1].UserMessage)
	assert.Equal(t, "reply two", exchanges[1].Reply)
	assert.True(t, exchanges[0].Timestamp.Before(exchanges[1].Timestamp))
}

func TestPairExchangesSkipsUnansweredMessage(t *testing.T) {
	messages := []models.TherapyMessage{
		{ID: 3, Content: "still waiting", IsUser: true, CreatedAt: time.Now()},
		{ID: 2, Content: "a reply", IsUser: false, CreatedAt: time.Now().Add(-time.Minute)},
		{ID: 1, Content: "a question", IsUser: true, CreatedAt: time.Now().Add(-2 * time.Minute)},
	}

	exchanges := pairExchanges(messages, 6)

	require.Len(t, exchanges, 1)
	assert.Equal(t, "a question", exchanges[0].UserMessage)
	assert.Equal(t, "a reply", exchanges[0].Reply)
}

func TestPairExchangesKeepsMostRecentPairs(t *testing.T) {
	messages := newestFirst("reply three", "user three", "reply two", "user two", "reply one", "user one")

	exchanges := pairExchanges(messages, 2)

	require.Len(t, exchanges, 2)
	assert.Equal(t, "user two", exchanges[0].UserMessage)
	assert.Equal(t, "user three", exchanges[1].UserMessage)
}

func TestPairExchangesEmptyWindow(t *testing.T) {
	assert.Empty(t, pairExchanges(nil, 6))
}

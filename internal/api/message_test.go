package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/mood"
)

func testMessageHandler() *MessageHandler {
	return &MessageHandler{classifier: mood.NewClassifier()}
}

func TestMoodForCrisisIsAlwaysConcerned(t *testing.T) {
	h := testMessageHandler()

	text, m := h.moodFor(ai.GenerateResult{Response: ai.CrisisResponse, Source: "crisis"}, "I can't go on")

	assert.Equal(t, ai.CrisisResponse, text)
	assert.Equal(t, models.MoodConcerned, m)
}

func TestMoodForUsesMarkerWhenValid(t *testing.T) {
	h := testMessageHandler()

	text, m := h.moodFor(ai.GenerateResult{
		Response: "That sounds like real progress. MOOD: happy",
		Source:   "openai",
	}, "I got the job!")

	assert.Equal(t, "That sounds like real progress.", text)
	assert.Equal(t, models.MoodHappy, m)
}

func TestMoodForFallsBackToClassifierOnBadMarker(t *testing.T) {
	h := testMessageHandler()

	text, m := h.moodFor(ai.GenerateResult{
		Response: "I hear how sad and lonely this feels. MOOD: ecstatic",
		Source:   "openai",
	}, "Everything is terrible")

	assert.Equal(t, "I hear how sad and lonely this feels.", text)
	assert.Equal(t, models.MoodConcerned, m)
}

func TestMoodForClassifiesUnmarkedReply(t *testing.T) {
	h := testMessageHandler()

	_, m := h.moodFor(ai.GenerateResult{
		Response: "Let me think about that. Consider what triggered it.",
		Source:   "deepseek",
	}, "Why do I keep doing this?")

	assert.Equal(t, models.MoodThinking, m)
}

func TestParseUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "userId", Value: "42"}}

	id, err := parseUintParam(c, "userId")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	c.Params = gin.Params{{Key: "userId", Value: "abc"}}
	_, err = parseUintParam(c, "userId")
	assert.Error(t, err)
}

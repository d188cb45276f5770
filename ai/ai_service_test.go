package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, reply string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		require.Equal(t, "system", req.Messages[0].Role)

		resp := chatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{})
		resp.Choices[0].Message.Content = reply
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateUsesOpenAI(t *testing.T) {
	server := completionServer(t, "You are not alone in this.\nMOOD: concerned", nil)
	defer server.Close()

	svc := NewService(Config{OpenAIKey: "test-key", OpenAIBaseURL: server.URL}, nil)
	result := svc.Generate(context.Background(), GenerateInput{
		UserMessage: "I feel overwhelmed",
		Personality: PersonalityWarm,
	})

	assert.Equal(t, "openai", result.Source)
	assert.Contains(t, result.Response, "not alone")
}

func TestGenerateFallsBackOnProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewService(Config{
		OpenAIKey:       "test-key",
		OpenAIBaseURL:   server.URL,
		DeepSeekKey:     "test-key",
		DeepSeekBaseURL: server.URL,
	}, nil)
	result := svc.Generate(context.Background(), GenerateInput{
		UserMessage: "I feel overwhelmed",
		Personality: PersonalityGentle,
	})

	assert.Equal(t, "fallback", result.Source)
	assert.NotEmpty(t, result.Response)
	assert.Contains(t, fallbackResponses[PersonalityGentle], result.Response)
}

func TestGenerateCrisisShortCircuitsProviders(t *testing.T) {
	calls := 0
	server := completionServer(t, "should never be used", &calls)
	defer server.Close()

	svc := NewService(Config{OpenAIKey: "test-key", OpenAIBaseURL: server.URL}, nil)
	result := svc.Generate(context.Background(), GenerateInput{
		UserMessage: "I want to die",
		Personality: PersonalityProfessional,
	})

	assert.Equal(t, "crisis", result.Source)
	assert.Equal(t, CrisisResponse, result.Response)
	assert.Zero(t, calls, "crisis check must bypass the provider call")
}

func TestGenerateDeepSeekAfterOpenAIFailure(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer failing.Close()
	working := completionServer(t, "Let's take this one step at a time.", nil)
	defer working.Close()

	svc := NewService(Config{
		OpenAIKey:       "test-key",
		OpenAIBaseURL:   failing.URL,
		DeepSeekKey:     "test-key",
		DeepSeekBaseURL: working.URL,
	}, nil)
	result := svc.Generate(context.Background(), GenerateInput{
		UserMessage: "I can't sleep lately",
		Personality: PersonalityAnalytical,
	})

	assert.Equal(t, "deepseek", result.Source)
	assert.Contains(t, result.Response, "one step")
}

func TestBuildMessagesBoundsHistory(t *testing.T) {
	input := GenerateInput{
		UserMessage: "latest",
		Personality: PersonalityWarm,
	}
	for i := 0; i < 10; i++ {
		input.History = append(input.History, Exchange{UserMessage: "u", Reply: "a"})
	}

	messages := buildMessages(input)
	// System prompt + 6 exchanges * 2 + current user turn.
	assert.Len(t, messages, 1+historyWindow*2+1)
	assert.Equal(t, "user", messages[len(messages)-1].Role)
	assert.Contains(t, messages[len(messages)-1].Content, "latest")
}

func TestSystemPromptEmbedsPersonality(t *testing.T) {
	warm := SystemPrompt(PersonalityWarm, "en-US")
	analytical := SystemPrompt(PersonalityAnalytical, "en-US")
	assert.NotEqual(t, warm, analytical)
	assert.True(t, strings.Contains(warm, "Dr. Sarah"))
	assert.True(t, strings.Contains(analytical, "systematic"))

	localized := SystemPrompt(PersonalityWarm, "de-DE")
	assert.Contains(t, localized, "de-DE")
}

func TestSplitMoodMarker(t *testing.T) {
	text, mood, ok := SplitMoodMarker("I hear you.\nMOOD: concerned")
	assert.True(t, ok)
	assert.Equal(t, "I hear you.", text)
	assert.Equal(t, "concerned", mood)

	text, _, ok = SplitMoodMarker("plain reply without marker")
	assert.False(t, ok)
	assert.Equal(t, "plain reply without marker", text)
}

func TestClipIDDeterministic(t *testing.T) {
	a := ClipID("hello", "alloy", 0.9)
	b := ClipID("hello", "alloy", 0.9)
	c := ClipID("hello", "alloy", 1.0)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"virtual-therapy-demo/backend/pkg/logger"
	"virtual-therapy-demo/backend/pkg/resilience"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

	openAIModel   = "gpt-4o"
	deepSeekModel = "deepseek-chat"

	// One prompt exchange is a user turn plus the assistant reply.
	historyWindow = 6

	samplingTemperature = 0.7
	maxResponseTokens   = 500
)

// Config holds provider credentials and endpoints. Empty key/URL disables
// the corresponding provider.
type Config struct {
	OpenAIKey       string
	OpenAIBaseURL   string
	DeepSeekKey     string
	DeepSeekBaseURL string
	LocalModelURL   string
	Timeout         time.Duration
}

// Service generates therapist responses. Providers are tried in order
// (OpenAI, DeepSeek, local model); a single failed call per provider moves on
// to the next, and when all fail the personality fallback table answers. A
// breaker per provider skips one that keeps failing until its retry window
// elapses. The service holds no per-conversation state.
type Service struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
	breakers   map[string]*resilience.CircuitBreaker
}

// NewService creates a response generation service.
func NewService(cfg Config, log *logger.Logger) *Service {
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if cfg.DeepSeekBaseURL == "" {
		cfg.DeepSeekBaseURL = defaultDeepSeekBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		if log = logger.GetGlobal(); log == nil {
			log = logger.New(logger.DefaultConfig())
		}
	}
	breakers := make(map[string]*resilience.CircuitBreaker, 3)
	for _, name := range []string{"openai", "deepseek", "local"} {
		breakers[name] = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig(name), log)
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
		breakers:   breakers,
	}
}

// Generate produces a therapist reply. It is total: the crisis check wins
// over everything, provider errors degrade to the canned table, and the
// result text is never empty.
func (s *Service) Generate(ctx context.Context, input GenerateInput) GenerateResult {
	if ContainsCrisisKeyword(input.UserMessage) {
		return GenerateResult{Response: CrisisResponse, Source: "crisis"}
	}

	input.Personality = NormalizePersonality(string(input.Personality))

	if s.cfg.OpenAIKey != "" {
		var response string
		err := s.breakers["openai"].Execute(func() error {
			var callErr error
			response, callErr = s.chatCompletion(ctx, s.cfg.OpenAIBaseURL, s.cfg.OpenAIKey, openAIModel, input)
			return callErr
		})
		if err == nil {
			return GenerateResult{Response: response, Source: "openai"}
		}
		s.log.Warn("OpenAI request failed", "error", err.Error())
	}

	if s.cfg.DeepSeekKey != "" {
		var response string
		err := s.breakers["deepseek"].Execute(func() error {
			var callErr error
			response, callErr = s.chatCompletion(ctx, s.cfg.DeepSeekBaseURL, s.cfg.DeepSeekKey, deepSeekModel, input)
			return callErr
		})
		if err == nil {
			return GenerateResult{Response: response, Source: "deepseek"}
		}
		s.log.Warn("DeepSeek request failed", "error", err.Error())
	}

	if s.cfg.LocalModelURL != "" {
		var response string
		err := s.breakers["local"].Execute(func() error {
			var callErr error
			response, callErr = s.generateLocal(ctx, input)
			return callErr
		})
		if err == nil {
			return GenerateResult{Response: response, Source: "local"}
		}
		s.log.Warn("Local model request failed", "error", err.Error())
	}

	return GenerateResult{Response: FallbackResponse(input.Personality), Source: "fallback"}
}

// SystemPrompt builds the therapist instruction for a personality.
func SystemPrompt(p Personality, language string) string {
	base := `You are Dr. Sarah, a licensed clinical psychologist and virtual therapist. You provide supportive, empathetic, and professional therapy sessions through text-based conversations.

Your role:
- Listen actively and validate the user's feelings
- Ask thoughtful follow-up questions to encourage self-reflection
- Provide evidence-based therapeutic techniques when appropriate
- Maintain professional boundaries while being warm and supportive
- Recognize when issues may require professional in-person help

Guidelines:
- Keep responses conversational and accessible (not overly clinical)
- Focus on the user's immediate emotional needs
- Use reflective listening techniques
- Avoid giving direct advice; instead guide users to their own insights
- Be culturally sensitive and non-judgmental

Remember: You are providing supportive conversation, not replacing professional therapy.`

	additions := map[Personality]string{
		PersonalityWarm:         "Your approach is especially warm, nurturing, and emotionally supportive. Use gentle language and focus on emotional validation.",
		PersonalityProfessional: "Your approach is more clinical and structured. Use professional therapeutic language and evidence-based techniques.",
		PersonalityGentle:       "Your approach is very gentle and patient. Take extra care with sensitive topics and allow plenty of space for the user to process.",
		PersonalityEncouraging:  "Your approach is optimistic and strength-focused. Help users recognize their resilience and positive qualities.",
		PersonalityAnalytical:   "Your approach is thoughtful and systematic. Help users analyze patterns and gain cognitive insights.",
	}

	prompt := base + "\n\n" + additions[NormalizePersonality(string(p))]
	if language != "" && !strings.HasPrefix(language, "en") {
		prompt += fmt.Sprintf("\n\nRespond in the language with BCP 47 tag %q.", language)
	}
	return prompt
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// buildMessages assembles the prompt: system instruction, bounded history,
// then the current user turn with the mood-marker request appended.
func buildMessages(input GenerateInput) []chatMessage {
	messages := []chatMessage{
		{Role: "system", Content: SystemPrompt(input.Personality, input.Language)},
	}

	history := input.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, exchange := range history {
		messages = append(messages, chatMessage{Role: "user", Content: exchange.UserMessage})
		messages = append(messages, chatMessage{Role: "assistant", Content: exchange.Reply})
	}

	current := fmt.Sprintf(`Please provide a therapeutic response to the user's message.
At the end of your response, include on a new line: MOOD: [mood]
Where [mood] is one of: idle, listening, speaking, thinking, happy, concerned

User message: %s`, input.UserMessage)

	return append(messages, chatMessage{Role: "user", Content: current})
}

func (s *Service) chatCompletion(ctx context.Context, baseURL, apiKey, model string, input GenerateInput) (string, error) {
	requestBody := chatCompletionRequest{
		Model:       model,
		Messages:    buildMessages(input),
		Temperature: samplingTemperature,
		MaxTokens:   maxResponseTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making API request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if completion.Error != nil {
		return "", fmt.Errorf("API error: %s", completion.Error.Message)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("no response generated")
	}

	return completion.Choices[0].Message.Content, nil
}

func (s *Service) generateLocal(ctx context.Context, input GenerateInput) (string, error) {
	type localModelRequest struct {
		SystemPrompt string        `json:"system_prompt"`
		History      []chatMessage `json:"history"`
		Query        string        `json:"query"`
	}

	messages := buildMessages(input)
	requestBody := localModelRequest{
		SystemPrompt: messages[0].Content,
		History:      messages[1 : len(messages)-1],
		Query:        input.UserMessage,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.LocalModelURL+"/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making API request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("local API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var localResp struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(body, &localResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if localResp.Error != "" {
		return "", fmt.Errorf("local API error: %s", localResp.Error)
	}
	if localResp.Response == "" {
		return "", errors.New("no response generated")
	}

	return localResp.Response, nil
}

// SplitMoodMarker strips a trailing "MOOD: x" marker from a model reply.
// It returns the cleaned text, the mood value (lowercased) and whether a
// marker was present.
func SplitMoodMarker(content string) (string, string, bool) {
	idx := strings.LastIndex(content, "MOOD:")
	if idx < 0 {
		return content, "", false
	}
	text := strings.TrimSpace(content[:idx])
	mood := strings.ToLower(strings.TrimSpace(content[idx+len("MOOD:"):]))
	if text == "" || mood == "" {
		return content, "", false
	}
	return text, mood, true
}

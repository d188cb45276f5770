package ai

import (
	"time"
)

// Personality is the closed set of therapist response styles. Unknown values
// normalize to PersonalityWarm so a stale client setting can never select an
// empty response set.
type Personality string

const (
	PersonalityWarm         Personality = "warm"
	PersonalityProfessional Personality = "professional"
	PersonalityGentle       Personality = "gentle"
	PersonalityEncouraging  Personality = "encouraging"
	PersonalityAnalytical   Personality = "analytical"
)

// NormalizePersonality maps an arbitrary string to a known personality.
func NormalizePersonality(s string) Personality {
	switch Personality(s) {
	case PersonalityWarm, PersonalityProfessional, PersonalityGentle,
		PersonalityEncouraging, PersonalityAnalytical:
		return Personality(s)
	}
	return PersonalityWarm
}

// Exchange is one user/assistant turn pair from the conversation history.
type Exchange struct {
	UserMessage string
	Reply       string
	Timestamp   time.Time
}

// GenerateInput carries everything a response generation call needs. The
// service itself is stateless per call.
type GenerateInput struct {
	UserMessage string
	History     []Exchange
	Personality Personality
	Language    string
}

// GenerateResult is the outcome of a response generation call.
type GenerateResult struct {
	Response string
	// Source records which path produced the response: "openai", "deepseek",
	// "local", "fallback" or "crisis".
	Source string
}

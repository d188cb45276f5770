package mood

import (
	"strings"

	"virtual-therapy-demo/backend/internal/models"
)

// Keyword buckets driving the character mood heuristic. The exact lists are
// policy, not contract; they can be replaced without touching callers.
var (
	positiveKeywords = []string{
		"happy", "good", "great", "wonderful", "excellent", "progress", "strength",
		"joy", "excited", "amazing", "grateful", "better",
	}
	negativeKeywords = []string{
		"sad", "bad", "difficult", "challenging", "worried", "anxious", "concern",
		"depressed", "scared", "stress", "hurt", "lonely",
	}
	thinkingKeywords = []string{
		"think", "consider", "reflect", "analyze", "explore", "examine",
	}
)

// Classifier maps conversation text to a character mood.
type Classifier struct {
	positive []string
	negative []string
	thinking []string
}

// NewClassifier returns a classifier with the default keyword policy.
func NewClassifier() *Classifier {
	return &Classifier{
		positive: positiveKeywords,
		negative: negativeKeywords,
		thinking: thinkingKeywords,
	}
}

// Classify derives a mood from the therapist reply and the user's utterance.
// Thinking cues are only counted in the reply; sentiment counts both sides.
func (c *Classifier) Classify(replyText, userText string) models.Mood {
	reply := strings.ToLower(replyText)
	user := strings.ToLower(userText)

	positive := countMatches(c.positive, reply, user)
	negative := countMatches(c.negative, reply, user)
	thinking := countMatches(c.thinking, reply)

	switch {
	case thinking >= 2:
		return models.MoodThinking
	case positive > negative:
		return models.MoodHappy
	case negative > positive:
		return models.MoodConcerned
	default:
		return models.MoodIdle
	}
}

func countMatches(keywords []string, texts ...string) int {
	count := 0
	for _, word := range keywords {
		for _, text := range texts {
			if strings.Contains(text, word) {
				count++
				break
			}
		}
	}
	return count
}

package ai

import (
	"math/rand"
	"strings"
)

// crisisKeywords trigger the mandatory safety response. The check runs before
// any provider call and before personality selection.
var crisisKeywords = []string{
	"kill myself",
	"suicide",
	"want to die",
	"end it all",
	"no reason to live",
}

// CrisisResponse is the fixed safety message directing the user to crisis
// resources. It is returned verbatim whenever a crisis keyword is detected.
const CrisisResponse = "I'm very concerned about what you're sharing. Your life has value, and there are people who care about you. Please reach out to a crisis helpline immediately - you can call 988 (Suicide & Crisis Lifeline) or 911. You don't have to face this alone."

// ContainsCrisisKeyword reports whether the message contains a crisis phrase.
func ContainsCrisisKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// fallbackResponses is the personality-keyed canned response table used when
// every provider fails. Each personality has its own hand-written set.
var fallbackResponses = map[Personality][]string{
	PersonalityWarm: {
		"I hear you, and I want you to know that what you're feeling is completely valid. Can you tell me more about what's been weighing on your mind?",
		"Thank you for sharing that with me. It takes courage to open up. How has this been affecting your daily life?",
		"I'm here with you through this. What do you think might help you feel more supported right now?",
		"Your feelings are important, and I'm grateful you trust me with them. What would you like to explore together?",
		"That sounds really challenging. You're not alone in feeling this way. What resources or support do you have in your life?",
	},
	PersonalityProfessional: {
		"I understand. Let's examine this situation more closely. What specific aspects concern you most?",
		"Can you identify any patterns or triggers related to what you've described?",
		"From a therapeutic perspective, what coping strategies have you tried before?",
		"Let's work together to develop some concrete steps forward. What are your primary goals?",
		"What evidence do you have that supports or challenges these thoughts you're experiencing?",
	},
	PersonalityGentle: {
		"Take your time. There's no rush here. How would you like to begin exploring this?",
		"I can sense this is difficult to talk about. We can go at whatever pace feels comfortable for you.",
		"Your experience matters deeply. What feels most important for you to share right now?",
		"It's okay to feel uncertain. What small step forward might feel manageable today?",
		"You're being so brave by being here. What would feel most helpful for you in this moment?",
	},
	PersonalityEncouraging: {
		"You've already taken an important step by reaching out. What strengths do you see in yourself?",
		"I believe in your ability to work through this. What progress have you made recently?",
		"You have more resilience than you might realize. How have you overcome challenges before?",
		"This conversation shows your commitment to growth. What motivates you to keep moving forward?",
		"You're capable of positive change. What would that change look like for you?",
	},
	PersonalityAnalytical: {
		"Let's break this down together. What happened right before these feelings started?",
		"I notice a pattern in what you're describing. Does this situation remind you of anything from the past?",
		"What thoughts tend to come up when you're in this state? Naming them can loosen their grip.",
		"If a friend described this exact situation to you, what would you observe about it?",
		"What would you say is the core belief underneath this reaction?",
	},
}

// FallbackResponse picks a canned response for the personality. It never
// returns an empty string.
func FallbackResponse(p Personality) string {
	set := fallbackResponses[NormalizePersonality(string(p))]
	return set[rand.Intn(len(set))]
}

package mood

import (
	"testing"

	"virtual-therapy-demo/backend/internal/models"
)

func TestClassifyAnxiousUserGetsConcerned(t *testing.T) {
	c := NewClassifier()
	mood := c.Classify("That sounds really hard. What has been weighing on you?", "I feel anxious all the time")
	if mood != models.MoodConcerned {
		t.Fatalf("expected concerned mood, got %s", mood)
	}
}

func TestClassifyPositiveExchange(t *testing.T) {
	c := NewClassifier()
	mood := c.Classify("That is wonderful progress, I'm glad to hear it!", "I had a great week")
	if mood != models.MoodHappy {
		t.Fatalf("expected happy mood, got %s", mood)
	}
}

func TestClassifyReflectivePromptWinsOverSentiment(t *testing.T) {
	c := NewClassifier()
	mood := c.Classify("Let's explore that together. What do you think triggered it?", "not sure")
	if mood != models.MoodThinking {
		t.Fatalf("expected thinking mood, got %s", mood)
	}
}

func TestClassifyNeutralDefaultsToIdle(t *testing.T) {
	c := NewClassifier()
	mood := c.Classify("Tell me more about your day.", "I went to work")
	if mood != models.MoodIdle {
		t.Fatalf("expected idle mood, got %s", mood)
	}
}

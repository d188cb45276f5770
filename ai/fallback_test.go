package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsCrisisKeyword(t *testing.T) {
	assert.True(t, ContainsCrisisKeyword("I want to die"))
	assert.True(t, ContainsCrisisKeyword("sometimes I think about SUICIDE"))
	assert.True(t, ContainsCrisisKeyword("there is no reason to live anymore"))
	assert.False(t, ContainsCrisisKeyword("I feel anxious about work"))
	assert.False(t, ContainsCrisisKeyword(""))
}

func TestFallbackResponseNeverEmpty(t *testing.T) {
	personalities := []Personality{
		PersonalityWarm,
		PersonalityProfessional,
		PersonalityGentle,
		PersonalityEncouraging,
		PersonalityAnalytical,
	}
	for _, p := range personalities {
		for i := 0; i < 20; i++ {
			assert.NotEmpty(t, FallbackResponse(p), "personality %s", p)
		}
	}
}

func TestFallbackResponseDrawnFromOwnSet(t *testing.T) {
	set := fallbackResponses[PersonalityProfessional]
	for i := 0; i < 50; i++ {
		assert.Contains(t, set, FallbackResponse(PersonalityProfessional))
	}
}

func TestNormalizePersonality(t *testing.T) {
	assert.Equal(t, PersonalityGentle, NormalizePersonality("gentle"))
	assert.Equal(t, PersonalityWarm, NormalizePersonality("motivational"))
	assert.Equal(t, PersonalityWarm, NormalizePersonality(""))
}

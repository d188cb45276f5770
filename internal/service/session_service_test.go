package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromMessageShortMessageUnchanged(t *testing.T) {
	assert.Equal(t, "I had a rough day", TitleFromMessage("I had a rough day"))
}

func TestTitleFromMessageTruncatesLongMessage(t *testing.T) {
	long := strings.Repeat("a", 80)

	title := TitleFromMessage(long)

	assert.Equal(t, strings.Repeat("a", 50)+"...", title)
}

func TestTitleFromMessageExactLimitKept(t *testing.T) {
	exact := strings.Repeat("b", 50)
	assert.Equal(t, exact, TitleFromMessage(exact))
}

func TestTitleFromMessageCountsRunes(t *testing.T) {
	long := strings.Repeat("é", 60)

	title := TitleFromMessage(long)

	assert.Equal(t, strings.Repeat("é", 50)+"...", title)
}

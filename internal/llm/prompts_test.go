package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGreeting(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{
		"hi", "Hi", "HELLO", "  hey  ", "Namaste", "good morning", "/start", "Hello!",
	} {
		assert.True(t, IsGreeting(msg), "%q should be a greeting", msg)
	}

	for _, msg := range []string{
		"hi, what's the weather in Delhi?",
		"hello there, any news today",
		"what's up with AAPL",
		"",
	} {
		assert.False(t, IsGreeting(msg), "%q should not be a greeting", msg)
	}
}

func TestCannedRepliesAreNonEmpty(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, GreetingReply())
	assert.NotEmpty(t, WelcomeReply())
}

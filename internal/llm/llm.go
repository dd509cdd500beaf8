// Package llm wraps the language-model providers behind a small
// provider interface and exposes the two pipeline stages that use
// them: intent classification and reply composition. Gemini is the
// primary provider, Groq (OpenAI-compatible) the fallback, and both
// stages degrade deterministically when every provider fails.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

// HistoryTurn is one prior exchange passed to a provider for context.
type HistoryTurn struct {
	User string
	Bot  string
}

// Provider is one language-model backend. Implementations translate
// the two pipeline calls into their own wire format.
type Provider interface {
	// Name identifies the provider in logs and metrics ("gemini",
	// "groq").
	Name() string

	// ClassifyIntent routes a message onto the closed intent set.
	// An error means the provider could not produce a usable answer;
	// the caller falls through to the next provider.
	ClassifyIntent(ctx context.Context, message string, history []HistoryTurn) (intent.Decision, error)

	// ComposeReply writes the user-facing response. dataSummary is the
	// rendered fetch result, or empty for plain conversation.
	ComposeReply(ctx context.Context, message string, history []HistoryTurn, dataSummary string) (string, error)
}

// historyTranscript renders prior turns as plain text for providers
// that take a single prompt string.
func historyTranscript(history []HistoryTurn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "User: %s\nBallu: %s\n", turn.User, turn.Bot)
	}
	return b.String()
}

// composePrompt assembles the composer user prompt from history, the
// current message, and an optional data summary.
func composePrompt(message string, history []HistoryTurn, dataSummary string) string {
	var b strings.Builder
	if transcript := historyTranscript(history); transcript != "" {
		b.WriteString(transcript)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s\n", message)
	if dataSummary != "" {
		b.WriteString("\n")
		b.WriteString(composeDataPrompt)
		b.WriteString(dataSummary)
		b.WriteString("\n")
	}
	b.WriteString("\nBallu:")
	return b.String()
}

// classifyPrompt assembles the classifier user prompt. History gives
// the model enough context for follow-ups like "what about tomorrow".
func classifyPrompt(message string, history []HistoryTurn) string {
	var b strings.Builder
	if transcript := historyTranscript(history); transcript != "" {
		b.WriteString(transcript)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Latest message: %s", message)
	return b.String()
}

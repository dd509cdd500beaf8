package llm

import (
	"context"
	"errors"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/fetcher"
	"github.com/siddhantkochhar/ballu-go/internal/logger"
	"github.com/siddhantkochhar/ballu-go/internal/metrics"
)

// Canned replies used when no provider can compose. The user always
// gets something; raw upstream errors are never forwarded.
const (
	fallbackChatReply = "I'm here! Ask me about the weather, stock prices, or the news."

	apologyInvalidInput = "Hmm, I couldn't find what you asked for. Could you double-check the name and try again?"
	apologyRateLimited  = "I'm getting a lot of requests right now. Please try again in a minute."
	apologyUnavailable  = "Sorry, I couldn't reach that service right now. Please try again later."
)

// Composer turns pipeline state into the user-facing reply. It is
// total: whatever happened upstream, Compose returns a sendable
// string.
type Composer struct {
	providers []Provider
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewComposer builds the composer over the given providers. Nil
// providers (disabled backends) are skipped.
func NewComposer(log *logger.Logger, m *metrics.Metrics, providers ...Provider) *Composer {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Composer{
		providers: active,
		log:       log,
		metrics:   m,
	}
}

// Compose writes the reply for a processed message.
//   - A failed fetch maps to a category-appropriate apology; the
//     upstream error text never reaches the user.
//   - Weather results are sent as-is; the rendered report is already
//     the reply, and round-tripping numbers through a model risks
//     mangling them.
//   - Everything else goes through the provider chain, falling back to
//     the rendered data (or a canned chat line) when all providers
//     fail.
func (c *Composer) Compose(ctx context.Context, message string, history []HistoryTurn, result *fetcher.Result, fetchErr *fetcher.Error) string {
	if fetchErr != nil {
		return apologyFor(fetchErr)
	}

	if result != nil && result.Weather != nil {
		return result.Summary()
	}

	dataSummary := ""
	if result != nil {
		dataSummary = result.Summary()
	}

	for _, p := range c.providers {
		reply, err := p.ComposeReply(ctx, message, history, dataSummary)
		if err != nil {
			c.metrics.RecordComposer(p.Name(), "error")
			c.log.WithError(err).Warn("reply composition failed, trying next provider",
				"provider", p.Name())
			continue
		}
		c.metrics.RecordComposer(p.Name(), "success")
		return reply
	}

	if len(c.providers) > 0 {
		c.log.Warn("all composition providers failed, using template reply")
	}
	if dataSummary != "" {
		return dataSummary
	}
	return fallbackChatReply
}

// apologyFor maps a fetch error category onto a user-safe apology.
func apologyFor(fetchErr *fetcher.Error) string {
	switch {
	case errors.Is(fetchErr, apperrors.ErrInvalidInput),
		errors.Is(fetchErr, apperrors.ErrMissingParameter):
		return apologyInvalidInput
	case errors.Is(fetchErr, apperrors.ErrRateLimited):
		return apologyRateLimited
	default:
		return apologyUnavailable
	}
}

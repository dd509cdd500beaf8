package llm

import (
	"context"

	"github.com/siddhantkochhar/ballu-go/internal/intent"
	"github.com/siddhantkochhar/ballu-go/internal/logger"
	"github.com/siddhantkochhar/ballu-go/internal/metrics"
)

// Classifier routes a message onto the closed intent set. It walks the
// provider chain in order and is total: when every provider fails (or
// none is configured) the result is a chat decision, never an error.
type Classifier struct {
	providers []Provider
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewClassifier builds the classifier over the given providers. Nil
// providers (disabled backends) are skipped.
func NewClassifier(log *logger.Logger, m *metrics.Metrics, providers ...Provider) *Classifier {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Classifier{
		providers: active,
		log:       log,
		metrics:   m,
	}
}

// Classify returns the intent decision for a message. Providers are
// tried in order; the first usable answer wins. Failures are logged
// and counted but never surface to the caller.
func (c *Classifier) Classify(ctx context.Context, message string, history []HistoryTurn) intent.Decision {
	for _, p := range c.providers {
		decision, err := p.ClassifyIntent(ctx, message, history)
		if err != nil {
			c.metrics.RecordClassifier(p.Name(), "error")
			c.log.WithError(err).Warn("intent classification failed, trying next provider",
				"provider", p.Name())
			continue
		}
		status := "success"
		if !decision.Intent.Valid() {
			// Guard the closed set even against a buggy provider.
			status = "invalid"
			c.log.Warn("classifier produced unknown intent, treating as chat",
				"provider", p.Name(), "intent", string(decision.Intent))
			decision = intent.ChatDecision()
		}
		c.metrics.RecordClassifier(p.Name(), status)
		c.metrics.RecordIntent(decision.Intent.String())
		return decision
	}

	c.metrics.RecordIntent(intent.Chat.String())
	if len(c.providers) > 0 {
		c.log.Warn("all classification providers failed, falling back to chat")
	}
	return intent.ChatDecision()
}

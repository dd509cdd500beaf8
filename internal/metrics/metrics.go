package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the message pipeline.
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds prometheus.Histogram

	// Classifier metrics
	ClassifierRequestsTotal *prometheus.CounterVec
	IntentTotal             *prometheus.CounterVec

	// Fetcher metrics
	FetcherRequestsTotal   *prometheus.CounterVec
	FetcherDurationSeconds *prometheus.HistogramVec

	// Composer metrics
	ComposerRequestsTotal *prometheus.CounterVec

	// Storage metrics
	StorageErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_webhook_requests_total",
				Help: "Total number of webhook requests by status",
			},
			[]string{"status"}, // status: processed, ignored, duplicate, error
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ballu_webhook_duration_seconds",
				Help:    "Full per-message pipeline duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30}, // matches 30s message timeout
			},
		),

		ClassifierRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_classifier_requests_total",
				Help: "Total classifier calls by provider and status",
			},
			[]string{"provider", "status"}, // provider: gemini, groq, greeting, fallback
		),

		IntentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_intents_total",
				Help: "Total classified intents by label",
			},
			[]string{"intent"},
		),

		FetcherRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_fetcher_requests_total",
				Help: "Total fetcher calls by fetcher and status",
			},
			[]string{"fetcher", "status"}, // status: success, invalid_input, rate_limited, unavailable
		),

		FetcherDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ballu_fetcher_duration_seconds",
				Help:    "Fetcher request duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10}, // matches 10s fetch timeout
			},
			[]string{"fetcher"},
		),

		ComposerRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_composer_requests_total",
				Help: "Total composer calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, template_fallback, error
		),

		StorageErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballu_storage_errors_total",
				Help: "Total storage operation failures by operation",
			},
			[]string{"operation"}, // operation: record_turn, upsert_user, recent_turns, dedup
		),
	}
}

// RecordWebhook records a webhook request outcome.
func (m *Metrics) RecordWebhook(status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(status).Inc()
	m.WebhookDurationSeconds.Observe(duration)
}

// RecordClassifier records a classifier call.
func (m *Metrics) RecordClassifier(provider, status string) {
	m.ClassifierRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordIntent records a classified intent label.
func (m *Metrics) RecordIntent(label string) {
	m.IntentTotal.WithLabelValues(label).Inc()
}

// RecordFetcher records a fetcher call.
func (m *Metrics) RecordFetcher(fetcher, status string, duration float64) {
	m.FetcherRequestsTotal.WithLabelValues(fetcher, status).Inc()
	m.FetcherDurationSeconds.WithLabelValues(fetcher).Observe(duration)
}

// RecordComposer records a composer call.
func (m *Metrics) RecordComposer(provider, status string) {
	m.ComposerRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordStorageError records a storage operation failure.
func (m *Metrics) RecordStorageError(operation string) {
	m.StorageErrorsTotal.WithLabelValues(operation).Inc()
}

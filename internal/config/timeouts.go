// Package config provides centralized timeout constants.
//
// Every external call in the message pipeline is blocking and bounded:
// one classifier call, at most one fetcher call, one composer call, and
// the storage writes, performed strictly in sequence. The per-message
// budget below must therefore cover the sum of the stage budgets plus
// Telegram send time.
package config

import "time"

const (
	// MessageProcessing is the timeout for the full per-message
	// pipeline: classify, fetch, compose, send, record.
	MessageProcessing = 30 * time.Second

	// FetchRequest is the timeout for a single HTTP request to a data
	// provider (weather/stock/news). No retries are performed.
	FetchRequest = 10 * time.Second

	// ModelRequest is the timeout for a single LLM call (classifier or
	// composer, per provider attempt).
	ModelRequest = 10 * time.Second
)

// HTTP server timeouts. Telegram sends small JSON payloads, so reads
// are short; writes accommodate the full pipeline.
const (
	HTTPRead  = 10 * time.Second
	HTTPWrite = 35 * time.Second
	HTTPIdle  = 120 * time.Second
)

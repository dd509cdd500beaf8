// Package dispatch maps classified intents onto their data fetchers.
// The table is closed: only the intents known at construction time are
// routed, and chat never reaches a fetcher.
package dispatch

import (
	"context"

	"github.com/siddhantkochhar/ballu-go/internal/fetcher"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

// Dispatcher routes intent decisions to fetchers through a static
// table built once at startup.
type Dispatcher struct {
	table map[intent.Intent]fetcher.Fetcher
}

// New builds the dispatcher. Every data intent must have a fetcher;
// chat intentionally has none.
func New(weather, stock, news fetcher.Fetcher) *Dispatcher {
	return &Dispatcher{
		table: map[intent.Intent]fetcher.Fetcher{
			intent.Weather: weather,
			intent.Stock:   stock,
			intent.News:    news,
		},
	}
}

// FetcherFor returns the fetcher for a data intent, or nil for chat
// and anything outside the table.
func (d *Dispatcher) FetcherFor(it intent.Intent) fetcher.Fetcher {
	return d.table[it]
}

// Dispatch runs the fetch for a classified decision. Chat decisions
// return (nil, nil): the caller composes a reply without data.
// Required parameters are validated here so fetchers can assume
// presence; a missing one yields a typed invalid-input error without
// any outbound call.
func (d *Dispatcher) Dispatch(ctx context.Context, decision intent.Decision) (*fetcher.Result, *fetcher.Error) {
	f := d.table[decision.Intent]
	if f == nil {
		return nil, nil
	}

	for _, param := range f.RequiredParams() {
		if decision.Params[param] == "" {
			return nil, fetcher.MissingParamError(f.Name(), param)
		}
	}

	return f.Fetch(ctx, decision.Params)
}

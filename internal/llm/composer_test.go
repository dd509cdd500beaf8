package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/fetcher"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

func TestComposeWeatherBypassesProviders(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	p := &stubProvider{name: "gemini", reply: "should not be used"}
	c := NewComposer(log, m, p)

	result := &fetcher.Result{
		Kind:    intent.Weather,
		Weather: &fetcher.WeatherReport{City: "Pune", Country: "IN", TempC: 28, Condition: "clear sky"},
	}
	reply := c.Compose(context.Background(), "weather in pune", nil, result, nil)

	assert.Contains(t, reply, "Weather in Pune, IN")
	assert.Equal(t, 0, p.composeCalls)
}

func TestComposeUsesProviderForStockData(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	p := &stubProvider{name: "gemini", reply: "Apple is trading at $229.50, up 2% today!"}
	c := NewComposer(log, m, p)

	result := &fetcher.Result{
		Kind:  intent.Stock,
		Stock: &fetcher.StockQuote{Symbol: "AAPL", Company: "Apple Inc.", Price: 229.5},
	}
	reply := c.Compose(context.Background(), "apple stock?", nil, result, nil)

	assert.Equal(t, "Apple is trading at $229.50, up 2% today!", reply)
	assert.Equal(t, 1, p.composeCalls)
}

func TestComposeFallsBackToDataSummary(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	p := &stubProvider{name: "gemini", composeErr: errors.New("boom")}
	c := NewComposer(log, m, p)

	result := &fetcher.Result{
		Kind:  intent.Stock,
		Stock: &fetcher.StockQuote{Symbol: "AAPL", Company: "Apple Inc.", Price: 229.5, PreviousClose: 225},
	}
	reply := c.Compose(context.Background(), "apple stock?", nil, result, nil)

	assert.Contains(t, reply, "Apple Inc. (AAPL)")
}

func TestComposeChatWithoutProvidersUsesCannedReply(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	c := NewComposer(log, m)
	reply := c.Compose(context.Background(), "how are you?", nil, nil, nil)
	assert.Equal(t, fallbackChatReply, reply)
}

func TestComposeApologiesNeverLeakUpstreamErrors(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	p := &stubProvider{name: "gemini", reply: "unused"}
	c := NewComposer(log, m, p)

	cases := []struct {
		name     string
		fetchErr *fetcher.Error
		want     string
	}{
		{
			name:     "invalid input",
			fetchErr: fetcher.MissingParamError("get_weather", "city"),
			want:     apologyInvalidInput,
		},
		{
			name: "rate limited",
			fetchErr: &fetcher.Error{
				Category: apperrors.ErrRateLimited,
				Upstream: "newsapi",
				Message:  "quota exceeded for key sk-secret",
				Err:      apperrors.ErrRateLimited,
			},
			want: apologyRateLimited,
		},
		{
			name: "unavailable",
			fetchErr: &fetcher.Error{
				Category: apperrors.ErrUpstreamUnavailable,
				Upstream: "yahoo-finance",
				Message:  "dial tcp: connection refused",
				Err:      apperrors.ErrUpstreamUnavailable,
			},
			want: apologyUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reply := c.Compose(context.Background(), "anything", nil, nil, tc.fetchErr)
			assert.Equal(t, tc.want, reply)
			assert.NotContains(t, reply, tc.fetchErr.Message)
			assert.Equal(t, 0, p.composeCalls, "apologies must not call the model")
		})
	}
}

func TestComposeFallbackChainOrder(t *testing.T) {
	t.Parallel()
	log, m := testDeps()

	primary := &stubProvider{name: "gemini", composeErr: errors.New("boom")}
	fallback := &stubProvider{name: "groq", reply: "hello from groq"}
	c := NewComposer(log, m, primary, fallback)

	reply := c.Compose(context.Background(), "hi there friend", nil, nil, nil)
	assert.Equal(t, "hello from groq", reply)
	assert.Equal(t, 1, primary.composeCalls)
	assert.Equal(t, 1, fallback.composeCalls)
}

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/dispatch"
	"github.com/siddhantkochhar/ballu-go/internal/fetcher"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
	"github.com/siddhantkochhar/ballu-go/internal/llm"
	"github.com/siddhantkochhar/ballu-go/internal/logger"
	"github.com/siddhantkochhar/ballu-go/internal/metrics"
	"github.com/siddhantkochhar/ballu-go/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSender struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (s *stubSender) SendMessage(chatID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	s.chatIDs = append(s.chatIDs, chatID)
	return nil
}

type stubProvider struct {
	decision      intent.Decision
	classifyErr   error
	reply         string
	composeErr    error
	classifyCalls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) ClassifyIntent(_ context.Context, _ string, _ []llm.HistoryTurn) (intent.Decision, error) {
	s.classifyCalls++
	return s.decision, s.classifyErr
}

func (s *stubProvider) ComposeReply(_ context.Context, _ string, _ []llm.HistoryTurn, _ string) (string, error) {
	return s.reply, s.composeErr
}

type stubFetcher struct {
	name     string
	required []string
	result   *fetcher.Result
	err      *fetcher.Error
	calls    int
}

func (s *stubFetcher) Name() string             { return s.name }
func (s *stubFetcher) RequiredParams() []string { return s.required }

func (s *stubFetcher) Fetch(_ context.Context, _ map[string]string) (*fetcher.Result, *fetcher.Error) {
	s.calls++
	return s.result, s.err
}

type fixture struct {
	handler  *Handler
	router   *gin.Engine
	store    *storage.MemoryStore
	sender   *stubSender
	provider *stubProvider
	weather  *stubFetcher
}

func newFixture(t *testing.T, provider *stubProvider, weather *stubFetcher) *fixture {
	t.Helper()

	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	store := storage.NewMemoryStore()
	sender := &stubSender{}

	if weather == nil {
		weather = &stubFetcher{
			name:     "get_weather",
			required: []string{"city"},
			result: &fetcher.Result{
				Kind:    intent.Weather,
				Weather: &fetcher.WeatherReport{City: "Mumbai", Country: "IN", TempC: 31.4, Condition: "haze"},
			},
		}
	}
	stock := &stubFetcher{name: "get_stock_price", required: []string{"symbol"}}
	news := &stubFetcher{name: "get_news"}

	classifier := llm.NewClassifier(log, m, provider)
	composer := llm.NewComposer(log, m, provider)
	dispatcher := dispatch.New(weather, stock, news)

	h := New(log, m, store, classifier, composer, dispatcher, sender, 5, 5*time.Second)

	router := gin.New()
	router.POST("/webhook", h.HandleWebhook)
	router.GET("/user/:id", h.HandleGetUser)
	router.POST("/test/function", h.HandleTestFunction)
	router.POST("/test/intent", h.HandleTestIntent)

	return &fixture{
		handler:  h,
		router:   router,
		store:    store,
		sender:   sender,
		provider: provider,
		weather:  weather,
	}
}

func updateBody(t *testing.T, messageID int, userID, chatID int64, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"update_id": 1000 + messageID,
		"message": map[string]any{
			"message_id": messageID,
			"from":       map[string]any{"id": userID, "first_name": "Sid", "username": "sid42"},
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"date":       1724800000,
			"text":       text,
		},
	})
	require.NoError(t, err)
	return body
}

func (f *fixture) post(t *testing.T, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func seedUser(t *testing.T, store *storage.MemoryStore, userID int64) {
	t.Helper()
	_, err := store.UpsertUser(context.Background(), storage.User{UserID: userID, FirstName: "Sid"})
	require.NoError(t, err)
}

func TestWebhookWeatherHappyPath(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		decision: intent.Decision{
			Intent:       intent.Weather,
			Params:       map[string]string{"city": "Mumbai"},
			FunctionName: "get_weather",
		},
	}
	f := newFixture(t, provider, nil)
	seedUser(t, f.store, 42)

	rec := f.post(t, "/webhook", updateBody(t, 1, 42, 99, "what's the weather in Mumbai?"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "processed")
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "Weather in Mumbai, IN")
	assert.Equal(t, int64(99), f.sender.chatIDs[0])
	assert.Equal(t, 1, f.weather.calls)

	turns, err := f.store.RecentTurns(context.Background(), 42, 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "weather", turns[0].MessageType)
	assert.Equal(t, "get_weather", turns[0].FunctionUsed)
}

func TestWebhookFetchFailureSendsApology(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		decision: intent.Decision{
			Intent:       intent.Weather,
			Params:       map[string]string{"city": "Atlantis"},
			FunctionName: "get_weather",
		},
	}
	weather := &stubFetcher{
		name:     "get_weather",
		required: []string{"city"},
		err: &fetcher.Error{
			Category: apperrors.ErrUpstreamUnavailable,
			Upstream: "openweathermap",
			Message:  "dial tcp 1.2.3.4: connection refused",
			Err:      apperrors.ErrUpstreamUnavailable,
		},
	}
	f := newFixture(t, provider, weather)
	seedUser(t, f.store, 42)

	rec := f.post(t, "/webhook", updateBody(t, 2, 42, 99, "weather in Atlantis"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.sender.sent, 1)
	assert.NotContains(t, f.sender.sent[0], "connection refused")
	assert.Contains(t, f.sender.sent[0], "try again")
}

func TestWebhookGreetingSkipsModels(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision(), reply: "should not be used"}
	f := newFixture(t, provider, nil)
	seedUser(t, f.store, 42)

	rec := f.post(t, "/webhook", updateBody(t, 3, 42, 99, "hello"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.provider.classifyCalls)
	assert.Equal(t, 0, f.weather.calls)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, llm.GreetingReply(), f.sender.sent[0])

	turns, err := f.store.RecentTurns(context.Background(), 42, 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "greeting", turns[0].MessageType)
}

func TestWebhookFirstContactSendsWelcome(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision(), reply: "nice to meet you!"}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/webhook", updateBody(t, 4, 77, 77, "can you help me with something?"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, llm.WelcomeReply(), f.sender.sent[0])
	assert.Equal(t, "nice to meet you!", f.sender.sent[1])
}

func TestWebhookDuplicateDeliverySkipped(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision(), reply: "hi!"}
	f := newFixture(t, provider, nil)
	seedUser(t, f.store, 42)

	body := updateBody(t, 5, 42, 99, "tell me a joke")
	first := f.post(t, "/webhook", body)
	second := f.post(t, "/webhook", body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")
	assert.Len(t, f.sender.sent, 1, "duplicate delivery must not resend")
}

func TestWebhookIgnoresNonTextUpdates(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/webhook", []byte(`{"update_id": 1, "edited_message": {"message_id": 9}}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Empty(t, f.sender.sent)
}

func TestWebhookMalformedBodyStillOK(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/webhook", []byte(`{not json`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestWebhookClassifierFailureDegradesToChat(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		classifyErr: errors.New("model down"),
		reply:       "let's just chat then",
	}
	f := newFixture(t, provider, nil)
	seedUser(t, f.store, 42)

	rec := f.post(t, "/webhook", updateBody(t, 6, 42, 99, "weather in pune maybe?"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.weather.calls, "chat fallback must not fetch")
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "let's just chat then", f.sender.sent[0])
}

func TestGetUserEndpoint(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)
	seedUser(t, f.store, 42)

	req := httptest.NewRequest(http.MethodGet, "/user/42", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User          storage.User       `json:"user"`
		RecentTurns   []storage.ChatTurn `json:"recent_turns"`
		FunctionUsage map[string]int64   `json:"function_usage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.User.UserID)
	assert.Equal(t, "Sid", body.User.FirstName)
	assert.Empty(t, body.RecentTurns)
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	req := httptest.NewRequest(http.MethodGet, "/user/404404", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserBadID(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	req := httptest.NewRequest(http.MethodGet, "/user/abc", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestFunctionEndpoint(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/test/function", []byte(`{"function": "get_weather", "params": {"city": "Mumbai"}}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.weather.calls)
	assert.Contains(t, rec.Body.String(), "Weather in Mumbai")
}

func TestTestFunctionUnknownName(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/test/function", []byte(`{"function": "launch_rockets"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestFunctionErrorMapping(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	weather := &stubFetcher{
		name:     "get_weather",
		required: []string{"city"},
		err: &fetcher.Error{
			Category: apperrors.ErrRateLimited,
			Upstream: "openweathermap",
			Message:  "quota exceeded",
			Err:      apperrors.ErrRateLimited,
		},
	}
	f := newFixture(t, provider, weather)

	rec := f.post(t, "/test/function", []byte(`{"function": "get_weather", "params": {"city": "Mumbai"}}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestTestIntentEndpoint(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		decision: intent.Decision{
			Intent:       intent.Stock,
			Params:       map[string]string{"symbol": "AAPL"},
			FunctionName: "get_stock_price",
		},
	}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/test/intent", []byte(`{"message": "how is apple stock doing"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"intent":"stock"`)
	assert.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)
}

func TestTestIntentMissingMessage(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{decision: intent.ChatDecision()}
	f := newFixture(t, provider, nil)

	rec := f.post(t, "/test/intent", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Package webhook contains the Telegram webhook handler and the
// auxiliary HTTP endpoints. The webhook runs the full message
// pipeline synchronously: dedup, user upsert, classification,
// dispatch, composition, delivery, and history persistence. Telegram
// always gets a 200; redelivery is handled by the dedup record, not
// by status codes.
package webhook

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/siddhantkochhar/ballu-go/internal/ctxutil"
	"github.com/siddhantkochhar/ballu-go/internal/dispatch"
	"github.com/siddhantkochhar/ballu-go/internal/llm"
	"github.com/siddhantkochhar/ballu-go/internal/logger"
	"github.com/siddhantkochhar/ballu-go/internal/metrics"
	"github.com/siddhantkochhar/ballu-go/internal/storage"
	"github.com/siddhantkochhar/ballu-go/internal/telegram"
)

// Handler wires the message pipeline behind the webhook route.
type Handler struct {
	log            *logger.Logger
	metrics        *metrics.Metrics
	store          storage.Store
	classifier     *llm.Classifier
	composer       *llm.Composer
	dispatcher     *dispatch.Dispatcher
	sender         telegram.Sender
	historyWindow  int
	messageTimeout time.Duration
}

// New creates the webhook handler.
func New(
	log *logger.Logger,
	m *metrics.Metrics,
	store storage.Store,
	classifier *llm.Classifier,
	composer *llm.Composer,
	dispatcher *dispatch.Dispatcher,
	sender telegram.Sender,
	historyWindow int,
	messageTimeout time.Duration,
) *Handler {
	return &Handler{
		log:            log,
		metrics:        m,
		store:          store,
		classifier:     classifier,
		composer:       composer,
		dispatcher:     dispatcher,
		sender:         sender,
		historyWindow:  historyWindow,
		messageTimeout: messageTimeout,
	}
}

// HandleWebhook processes one Telegram update. The response is always
// 200: Telegram retries non-2xx deliveries, and a retry of a message
// we already half-processed would double-reply.
func (h *Handler) HandleWebhook(c *gin.Context) {
	start := time.Now()

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.WithError(err).Warn("webhook payload not an update, ignoring")
		h.metrics.RecordWebhook("malformed", time.Since(start).Seconds())
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		h.metrics.RecordWebhook("ignored", time.Since(start).Seconds())
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.messageTimeout)
	defer cancel()

	chatID := msg.Chat.ID
	userID := msg.From.ID
	// The context handler in the logger picks these up on every line.
	ctx = ctxutil.WithRequestID(ctx, uuid.NewString())
	ctx = ctxutil.WithUserID(ctx, userID)
	ctx = ctxutil.WithChatID(ctx, chatID)

	status := h.processMessage(ctx, msg)
	h.metrics.RecordWebhook(status, time.Since(start).Seconds())
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// processMessage runs the pipeline for one text message and returns
// the webhook status label.
func (h *Handler) processMessage(ctx context.Context, msg *tgbotapi.Message) string {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID
	userID := msg.From.ID

	seen, err := h.store.IsProcessed(ctx, int64(msg.MessageID), chatID)
	if err != nil {
		// Dedup is advisory: losing it risks a duplicate reply, which
		// beats dropping the message.
		h.metrics.RecordStorageError("is_processed")
		h.log.WithError(err).WarnContext(ctx, "dedup check failed, processing anyway")
	}
	if seen {
		h.log.InfoContext(ctx, "duplicate webhook delivery, skipping")
		return "duplicate"
	}
	if err := h.store.MarkProcessed(ctx, int64(msg.MessageID), chatID); err != nil {
		h.metrics.RecordStorageError("mark_processed")
		h.log.WithError(err).WarnContext(ctx, "failed to record processed message")
	}

	created, err := h.store.UpsertUser(ctx, storage.User{
		UserID:    userID,
		FirstName: msg.From.FirstName,
		Username:  msg.From.UserName,
	})
	if err != nil {
		h.metrics.RecordStorageError("upsert_user")
		h.log.WithError(err).WarnContext(ctx, "user upsert failed")
	}
	if created {
		h.log.InfoContext(ctx, "first contact from new user")
		if err := h.sender.SendMessage(chatID, llm.WelcomeReply()); err != nil {
			h.log.WithError(err).ErrorContext(ctx, "failed to send welcome message")
		}
	}

	// Bare greetings skip the models entirely.
	if llm.IsGreeting(text) {
		reply := llm.GreetingReply()
		if created {
			// The welcome message above already greeted them.
			reply = llm.WelcomeReply()
		} else if err := h.sender.SendMessage(chatID, reply); err != nil {
			h.log.WithError(err).ErrorContext(ctx, "failed to send greeting")
			return "send_failed"
		}
		h.recordTurn(ctx, storage.ChatTurn{
			UserID:      userID,
			UserMessage: text,
			BotResponse: reply,
			MessageType: "greeting",
		})
		return "processed"
	}

	var history []llm.HistoryTurn
	turns, err := h.store.RecentTurns(ctx, userID, h.historyWindow)
	if err != nil {
		h.metrics.RecordStorageError("recent_turns")
		h.log.WithError(err).WarnContext(ctx, "history lookup failed, continuing without context")
	} else {
		history = make([]llm.HistoryTurn, 0, len(turns))
		for _, turn := range turns {
			history = append(history, llm.HistoryTurn{User: turn.UserMessage, Bot: turn.BotResponse})
		}
	}

	decision := h.classifier.Classify(ctx, text, history)
	h.log.InfoContext(ctx, "message classified",
		"intent", decision.Intent.String(),
		"function", decision.FunctionName)

	fetchStart := time.Now()
	result, fetchErr := h.dispatcher.Dispatch(ctx, decision)
	if decision.FunctionName != "" {
		fetchStatus := "success"
		if fetchErr != nil {
			fetchStatus = fetchErr.CategoryLabel()
			h.log.WithError(fetchErr).WarnContext(ctx, "data fetch failed",
				"fetcher", decision.FunctionName)
		}
		h.metrics.RecordFetcher(decision.Intent.String(), fetchStatus, time.Since(fetchStart).Seconds())
	}

	reply := h.composer.Compose(ctx, text, history, result, fetchErr)

	if err := h.sender.SendMessage(chatID, reply); err != nil {
		h.log.WithError(err).ErrorContext(ctx, "failed to send reply")
		return "send_failed"
	}

	h.recordTurn(ctx, storage.ChatTurn{
		UserID:       userID,
		UserMessage:  text,
		BotResponse:  reply,
		MessageType:  decision.Intent.String(),
		FunctionUsed: decision.FunctionName,
	})
	return "processed"
}

// recordTurn persists a completed exchange, best effort.
func (h *Handler) recordTurn(ctx context.Context, turn storage.ChatTurn) {
	if err := h.store.RecordTurn(ctx, turn); err != nil {
		h.metrics.RecordStorageError("record_turn")
		h.log.WithError(err).WarnContext(ctx, "failed to persist chat turn")
	}
}

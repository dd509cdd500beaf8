package webhook

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/llm"
)

// HandleGetUser serves GET /user/:id with the stored profile.
func (h *Handler) HandleGetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be an integer"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	// Recent turns and usage counts are additive; their failures do not
	// hide the profile.
	turns, err := h.store.RecentTurns(ctx, userID, h.historyWindow)
	if err != nil {
		h.log.WithError(err).Warn("recent turns lookup failed")
	}
	usage, err := h.store.FunctionUsage(ctx, userID)
	if err != nil {
		h.log.WithError(err).Warn("function usage lookup failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"recent_turns":   turns,
		"function_usage": usage,
	})
}

// testFunctionRequest is the POST /test/function body.
type testFunctionRequest struct {
	Function string            `json:"function" binding:"required"`
	Params   map[string]string `json:"params"`
}

// HandleTestFunction serves POST /test/function: it runs one fetcher
// directly, bypassing the models, and returns the raw normalized
// result. Meant for manual smoke checks against the live upstreams.
func (h *Handler) HandleTestFunction(c *gin.Context) {
	var req testFunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "function name is required"})
		return
	}

	it, ok := llm.IntentForFunction(req.Function)
	f := h.dispatcher.FetcherFor(it)
	if !ok || f == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown function: " + req.Function})
		return
	}

	result, fetchErr := f.Fetch(c.Request.Context(), req.Params)
	if fetchErr != nil {
		c.JSON(statusForFetchError(fetchErr.CategoryLabel()), gin.H{
			"error":    fetchErr.Message,
			"category": fetchErr.CategoryLabel(),
			"upstream": fetchErr.Upstream,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"function": req.Function,
		"result":   result,
		"summary":  result.Summary(),
	})
}

// statusForFetchError maps a fetch error category to an HTTP status.
func statusForFetchError(category string) int {
	switch category {
	case "invalid_input":
		return http.StatusBadRequest
	case "rate_limited":
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// testIntentRequest is the POST /test/intent body.
type testIntentRequest struct {
	Message string `json:"message" binding:"required"`
}

// HandleTestIntent serves POST /test/intent: it runs only the
// classifier and returns the decision, so prompt changes can be
// checked without sending Telegram messages.
func (h *Handler) HandleTestIntent(c *gin.Context) {
	var req testIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	decision := h.classifier.Classify(c.Request.Context(), req.Message, nil)
	c.JSON(http.StatusOK, gin.H{
		"intent":   decision.Intent.String(),
		"function": decision.FunctionName,
		"params":   decision.Params,
	})
}

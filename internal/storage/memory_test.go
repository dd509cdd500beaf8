package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
)

func TestUpsertUserCreatesOnce(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.UpsertUser(ctx, User{UserID: 42, FirstName: "Siddhant"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.UpsertUser(ctx, User{UserID: 42, FirstName: "Sid", Username: "sid42"})
	require.NoError(t, err)
	assert.False(t, created)

	user, err := s.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Sid", user.FirstName)
	assert.Equal(t, "sid42", user.Username)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	_, err := s.GetUser(context.Background(), 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRecordTurnBumpsCounters(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.UpsertUser(ctx, User{UserID: 7, FirstName: "A"})
	require.NoError(t, err)

	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 7, UserMessage: "hi", BotResponse: "hey", MessageType: "chat"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 7, UserMessage: "weather in pune", BotResponse: "28C", MessageType: "weather", FunctionUsed: "get_weather"}))

	user, err := s.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.TotalMessages)

	turns, err := s.CountTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), turns)
}

func TestRecordTurnCreatesMissingUser(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 9001, UserMessage: "hi", BotResponse: "hey", MessageType: "chat"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 9001, UserMessage: "still there?", BotResponse: "yes", MessageType: "chat"}))

	user, err := s.GetUser(ctx, 9001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.TotalMessages)
	assert.False(t, user.CreatedAt.IsZero())

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecentTurnsOrderAndLimit(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		require.NoError(t, s.RecordTurn(ctx, ChatTurn{
			UserID:      1,
			UserMessage: fmt.Sprintf("msg-%d", i),
			BotResponse: fmt.Sprintf("reply-%d", i),
			MessageType: "chat",
		}))
	}
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 2, UserMessage: "other user", BotResponse: "x", MessageType: "chat"}))

	turns, err := s.RecentTurns(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, turns, 5)

	// Oldest first within the window: msg-4 .. msg-8.
	assert.Equal(t, "msg-4", turns[0].UserMessage)
	assert.Equal(t, "msg-8", turns[4].UserMessage)
	for _, turn := range turns {
		assert.Equal(t, int64(1), turn.UserID)
	}
}

func TestRecentTurnsEmptyHistory(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	turns, err := s.RecentTurns(context.Background(), 55, 5)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestProcessedMessageDedup(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	seen, err := s.IsProcessed(ctx, 100, 200)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkProcessed(ctx, 100, 200))

	seen, err = s.IsProcessed(ctx, 100, 200)
	require.NoError(t, err)
	assert.True(t, seen)

	// Same message ID in a different chat is distinct.
	seen, err = s.IsProcessed(ctx, 100, 201)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestFunctionUsage(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 1, MessageType: "weather", FunctionUsed: "get_weather"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 1, MessageType: "weather", FunctionUsed: "get_weather"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 1, MessageType: "stock", FunctionUsed: "get_stock_price"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 1, MessageType: "chat"}))
	require.NoError(t, s.RecordTurn(ctx, ChatTurn{UserID: 2, MessageType: "news", FunctionUsed: "get_news"}))

	usage, err := s.FunctionUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"get_weather":     2,
		"get_stock_price": 1,
	}, usage)
}

func TestCountUsers(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := s.UpsertUser(ctx, User{UserID: id, FirstName: "u"})
		require.NoError(t, err)
	}
	_, err := s.UpsertUser(ctx, User{UserID: 2, FirstName: "again"})
	require.NoError(t, err)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

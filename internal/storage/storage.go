// Package storage persists users, chat history, and webhook dedup
// records. The primary implementation is MongoDB; an in-memory store
// backs tests and keyless local runs. Persistence is best-effort for
// the message pipeline: a storage failure degrades context, it never
// blocks a reply.
package storage

import "context"

// Store is the persistence contract used by the message pipeline and
// the HTTP surface.
type Store interface {
	// UpsertUser creates or refreshes the user profile. created is
	// true when this was the user's first contact.
	UpsertUser(ctx context.Context, user User) (created bool, err error)

	// GetUser loads one user profile. Returns apperrors.ErrNotFound
	// when the user has never messaged the bot.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// RecordTurn appends a completed exchange to chat history and
	// bumps the user's message counters.
	RecordTurn(ctx context.Context, turn ChatTurn) error

	// RecentTurns returns up to limit most recent turns for a user,
	// oldest first, ready to feed the model as context.
	RecentTurns(ctx context.Context, userID int64, limit int) ([]ChatTurn, error)

	// FunctionUsage returns how many stored turns of a user used each
	// fetcher function, keyed by function name.
	FunctionUsage(ctx context.Context, userID int64) (map[string]int64, error)

	// IsProcessed reports whether a Telegram message ID was already
	// handled.
	IsProcessed(ctx context.Context, messageID, chatID int64) (bool, error)

	// MarkProcessed records a Telegram message ID as handled.
	MarkProcessed(ctx context.Context, messageID, chatID int64) error

	// CountUsers returns the number of known users.
	CountUsers(ctx context.Context) (int64, error)

	// CountTurns returns the number of stored chat turns.
	CountTurns(ctx context.Context) (int64, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

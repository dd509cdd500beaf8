package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
)

// MemoryStore is an in-memory Store for tests and keyless local runs.
// The bot stays usable without a database; history just does not
// survive a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]*User
	turns     []ChatTurn
	processed map[processedKey]time.Time
}

type processedKey struct {
	messageID int64
	chatID    int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*User),
		processed: make(map[processedKey]time.Time),
	}
}

// UpsertUser implements Store.
func (s *MemoryStore) UpsertUser(_ context.Context, user User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.users[user.UserID]
	if !ok {
		user.CreatedAt = now
		user.LastActive = now
		user.TotalMessages = 0
		s.users[user.UserID] = &user
		return true, nil
	}

	existing.FirstName = user.FirstName
	existing.Username = user.Username
	existing.LastActive = now
	return false, nil
}

// GetUser implements Store.
func (s *MemoryStore) GetUser(_ context.Context, userID int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// RecordTurn implements Store. The user record is created on the fly
// when absent so a turn never references a missing user.
func (s *MemoryStore) RecordTurn(_ context.Context, turn ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	s.turns = append(s.turns, turn)

	user, ok := s.users[turn.UserID]
	if !ok {
		user = &User{UserID: turn.UserID, CreatedAt: turn.Timestamp}
		s.users[turn.UserID] = user
	}
	user.TotalMessages++
	user.LastActive = turn.Timestamp
	return nil
}

// RecentTurns implements Store, returning oldest first.
func (s *MemoryStore) RecentTurns(_ context.Context, userID int64, limit int) ([]ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []ChatTurn
	for _, turn := range s.turns {
		if turn.UserID == userID {
			matched = append(matched, turn)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

// FunctionUsage implements Store.
func (s *MemoryStore) FunctionUsage(_ context.Context, userID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage := make(map[string]int64)
	for _, turn := range s.turns {
		if turn.UserID == userID && turn.FunctionUsed != "" {
			usage[turn.FunctionUsed]++
		}
	}
	return usage, nil
}

// IsProcessed implements Store.
func (s *MemoryStore) IsProcessed(_ context.Context, messageID, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[processedKey{messageID, chatID}]
	return ok, nil
}

// MarkProcessed implements Store.
func (s *MemoryStore) MarkProcessed(_ context.Context, messageID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[processedKey{messageID, chatID}] = time.Now().UTC()
	return nil
}

// CountUsers implements Store.
func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// CountTurns implements Store.
func (s *MemoryStore) CountTurns(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.turns)), nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close(_ context.Context) error { return nil }

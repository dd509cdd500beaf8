package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
)

// Collection names.
const (
	usersCollection     = "users"
	historyCollection   = "chat_history"
	processedCollection = "processed_messages"
)

// MongoStore is the MongoDB-backed Store implementation.
type MongoStore struct {
	client    *mongo.Client
	users     *mongo.Collection
	history   *mongo.Collection
	processed *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the collections.
// The caller owns the connection lifecycle via Close.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	store := &MongoStore{
		client:    client,
		users:     db.Collection(usersCollection),
		history:   db.Collection(historyCollection),
		processed: db.Collection(processedCollection),
	}

	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// ensureIndexes creates the lookup indexes. Index creation is
// idempotent on the server side.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo index users: %w", err)
	}

	_, err = s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo index chat_history: %w", err)
	}

	_, err = s.processed.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "chat_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo index processed_messages: %w", err)
	}
	return nil
}

// UpsertUser implements Store with a single upsert: profile fields are
// refreshed on every contact, creation fields only set once.
func (s *MongoStore) UpsertUser(ctx context.Context, user User) (bool, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":        user.UserID,
			"created_at":     now,
			"total_messages": int64(0),
		},
		"$set": bson.M{
			"first_name":  user.FirstName,
			"username":    user.Username,
			"last_active": now,
		},
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": user.UserID},
		update,
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("mongo upsert user: %w", err)
	}
	return res.UpsertedID != nil, nil
}

// GetUser implements Store.
func (s *MongoStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get user: %w", err)
	}
	return &user, nil
}

// RecordTurn implements Store: one insert plus a counter bump. The
// counter update upserts so a turn never references a missing user,
// even when the earlier profile upsert failed.
func (s *MongoStore) RecordTurn(ctx context.Context, turn ChatTurn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	if _, err := s.history.InsertOne(ctx, turn); err != nil {
		return fmt.Errorf("mongo insert turn: %w", err)
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": turn.UserID},
		bson.M{
			"$setOnInsert": bson.M{
				"user_id":    turn.UserID,
				"created_at": turn.Timestamp,
			},
			"$inc": bson.M{"total_messages": 1},
			"$set": bson.M{"last_active": turn.Timestamp},
		},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo bump message count: %w", err)
	}
	return nil
}

// RecentTurns implements Store. Turns come back oldest first so they
// can be fed to the model in conversation order.
func (s *MongoStore) RecentTurns(ctx context.Context, userID int64, limit int) ([]ChatTurn, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.history.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find turns: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var turns []ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("mongo decode turns: %w", err)
	}

	// Reverse from newest-first query order to conversation order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// FunctionUsage implements Store with a single group aggregation.
func (s *MongoStore) FunctionUsage(ctx context.Context, userID int64) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":       userID,
			"function_used": bson.M{"$nin": bson.A{"", nil}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$function_used",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.history.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo function usage: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var rows []struct {
		Function string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo decode function usage: %w", err)
	}

	usage := make(map[string]int64, len(rows))
	for _, row := range rows {
		usage[row.Function] = row.Count
	}
	return usage, nil
}

// IsProcessed implements Store.
func (s *MongoStore) IsProcessed(ctx context.Context, messageID, chatID int64) (bool, error) {
	count, err := s.processed.CountDocuments(ctx,
		bson.M{"message_id": messageID, "chat_id": chatID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo check processed: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed implements Store. A duplicate key race with another
// delivery of the same message is not an error.
func (s *MongoStore) MarkProcessed(ctx context.Context, messageID, chatID int64) error {
	_, err := s.processed.InsertOne(ctx, ProcessedMessage{
		MessageID:   messageID,
		ChatID:      chatID,
		ProcessedAt: time.Now().UTC(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo mark processed: %w", err)
	}
	return nil
}

// CountUsers implements Store.
func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.users.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("mongo count users: %w", err)
	}
	return count, nil
}

// CountTurns implements Store.
func (s *MongoStore) CountTurns(ctx context.Context) (int64, error) {
	count, err := s.history.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("mongo count turns: %w", err)
	}
	return count, nil
}

// Ping implements Store.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

package storage

import "time"

// User is one Telegram user known to the bot.
type User struct {
	UserID        int64             `bson:"user_id" json:"user_id"`
	FirstName     string            `bson:"first_name" json:"first_name"`
	Username      string            `bson:"username,omitempty" json:"username,omitempty"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	LastActive    time.Time         `bson:"last_active" json:"last_active"`
	TotalMessages int64             `bson:"total_messages" json:"total_messages"`
	Preferences   map[string]string `bson:"preferences,omitempty" json:"preferences,omitempty"`
}

// ChatTurn is one completed exchange: the user's message and the
// reply that was sent.
type ChatTurn struct {
	UserID       int64     `bson:"user_id" json:"user_id"`
	UserMessage  string    `bson:"user_message" json:"user_message"`
	BotResponse  string    `bson:"bot_response" json:"bot_response"`
	MessageType  string    `bson:"message_type" json:"message_type"`
	FunctionUsed string    `bson:"function_used,omitempty" json:"function_used,omitempty"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

// ProcessedMessage records a handled Telegram message ID so webhook
// redeliveries are not processed twice.
type ProcessedMessage struct {
	MessageID   int64     `bson:"message_id" json:"message_id"`
	ChatID      int64     `bson:"chat_id" json:"chat_id"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
}

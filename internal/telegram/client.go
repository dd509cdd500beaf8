// Package telegram wraps the Bot API client behind the small Sender
// interface the webhook handler needs, so tests can swap in a stub.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers outbound messages to Telegram chats.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Client is the production Sender backed by the Telegram Bot API.
type Client struct {
	api *tgbotapi.BotAPI
}

// NewClient authenticates against the Bot API. The constructor makes
// one getMe call, so a bad token fails at startup rather than on the
// first message.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Client{api: api}, nil
}

// BotUsername returns the authenticated bot's username.
func (c *Client) BotUsername() string {
	return c.api.Self.UserName
}

// SendMessage implements Sender.
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

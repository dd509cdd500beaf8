package llm

import "strings"

// personaPrompt is the system prompt shared by both providers when
// composing conversational replies.
const personaPrompt = `You are Ballu, a friendly and helpful Telegram assistant.
You can fetch current weather for any city, look up stock prices, and
share news headlines, and you are happy to just chat.

Rules:
- Keep replies short and conversational, suitable for a chat message.
- Be warm but not sycophantic. Light humor is fine.
- Never invent data. If you were not given weather, stock, or news data,
  do not make numbers up.
- Plain text only, no markdown formatting.`

// classifierPrompt steers the function-calling classification request.
// The model either calls exactly one tool or answers as plain chat.
const classifierPrompt = `You are the intent router for Ballu, a Telegram assistant.
Decide what the user's latest message asks for:
- Call get_weather when they want current weather in a city.
- Call get_stock_price when they want a stock or share price.
- Call get_news when they want news or headlines.
- For anything else (greetings, questions, small talk), do not call any
  function.

Call at most one function. Extract parameter values from the user's own
words; never guess a city or symbol they did not mention.`

// composeDataPrompt frames fetched data for the composer. The data
// summary is inserted verbatim; the model only rephrases it.
const composeDataPrompt = `The user asked a question and the following data was fetched for them.
Write a short, friendly reply that presents this data conversationally.
Do not alter any numbers or facts.

Data:
`

// greetings are matched exactly (case-insensitive, trimmed) so plain
// salutations skip the classifier entirely.
var greetings = map[string]struct{}{
	"hi":           {},
	"hello":        {},
	"hey":          {},
	"hii":          {},
	"hiii":         {},
	"yo":           {},
	"namaste":      {},
	"good morning": {},
	"good evening": {},
	"good night":   {},
	"/start":       {},
}

// greetingReply is the deterministic response for bare greetings.
const greetingReply = "Hey! I'm Ballu 👋 Ask me about the weather, stock prices, or the news — or just chat!"

// welcomeReply goes to a user the first time they message the bot.
const welcomeReply = "Welcome! I'm Ballu, your assistant on Telegram. I can tell you the weather in any city, look up stock prices, and share the latest news. What would you like to know?"

// IsGreeting reports whether the message is a bare salutation.
func IsGreeting(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Trim(normalized, "!.?")
	_, ok := greetings[normalized]
	return ok
}

// GreetingReply returns the canned salutation response.
func GreetingReply() string { return greetingReply }

// WelcomeReply returns the first-contact message for new users.
func WelcomeReply() string { return welcomeReply }

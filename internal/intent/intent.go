// Package intent defines the closed set of message intents the assistant
// recognizes and the decision record produced by the classifier.
package intent

// Intent is a classification label for an inbound user message.
// The set is closed: the classifier can only ever yield one of the
// constants below, and anything it cannot place lands on Chat.
type Intent string

const (
	// Weather asks for current weather in a city.
	Weather Intent = "weather"
	// Stock asks for a stock quote by ticker symbol.
	Stock Intent = "stock"
	// News asks for headlines, optionally on a topic.
	News Intent = "news"
	// Chat is general conversation with no data fetch.
	Chat Intent = "chat"
)

// All lists every valid intent. Used by tests and the dispatch table.
func All() []Intent {
	return []Intent{Weather, Stock, News, Chat}
}

// Parse converts a raw label to an Intent. The second return value is
// false for anything outside the closed set.
func Parse(s string) (Intent, bool) {
	switch Intent(s) {
	case Weather, Stock, News, Chat:
		return Intent(s), true
	default:
		return "", false
	}
}

// Valid reports whether i is a member of the closed set.
func (i Intent) Valid() bool {
	_, ok := Parse(string(i))
	return ok
}

// String returns the label as stored in chat history.
func (i Intent) String() string {
	return string(i)
}

// Decision is the transient output of the intent classifier. It is
// consumed by the dispatcher and never persisted.
type Decision struct {
	// Intent is always a member of the closed set.
	Intent Intent

	// Params maps parameter names to extracted values, e.g.
	// {"city": "Mumbai"} for Weather. Empty for Chat.
	Params map[string]string

	// FunctionName is the raw function name returned by the model,
	// kept for logging and the persisted function_used field.
	// Empty when no fetcher is involved.
	FunctionName string
}

// ChatDecision is the deterministic fallback: any classification failure
// degrades to general conversation with no parameters.
func ChatDecision() Decision {
	return Decision{Intent: Chat, Params: map[string]string{}}
}

package llm

import "github.com/siddhantkochhar/ballu-go/internal/intent"

// FunctionParam describes one parameter of a classifier function.
type FunctionParam struct {
	Name        string
	Description string
	Required    bool
}

// FunctionSpec is a provider-neutral description of one classifier
// function. Both the Gemini and the OpenAI-compatible tool sets are
// derived from these specs so the two providers can never drift.
type FunctionSpec struct {
	Name        string
	Description string
	Intent      intent.Intent
	Params      []FunctionParam
}

// functionSpecs lists the classifier functions, one per data intent.
var functionSpecs = []FunctionSpec{
	{
		Name:        "get_weather",
		Description: "Get the current weather for a city.",
		Intent:      intent.Weather,
		Params: []FunctionParam{
			{Name: "city", Description: "City name, e.g. Mumbai or London", Required: true},
		},
	},
	{
		Name:        "get_stock_price",
		Description: "Get the current price of a stock by ticker symbol.",
		Intent:      intent.Stock,
		Params: []FunctionParam{
			{Name: "symbol", Description: "Stock ticker symbol, e.g. AAPL or TSLA", Required: true},
		},
	},
	{
		Name:        "get_news",
		Description: "Get news headlines, optionally about a topic.",
		Intent:      intent.News,
		Params: []FunctionParam{
			{Name: "query", Description: "Topic to search for, or 'general' for top headlines", Required: false},
		},
	},
}

// FunctionSpecs returns the classifier function set.
func FunctionSpecs() []FunctionSpec {
	return functionSpecs
}

// IntentForFunction maps a model-returned function name onto the
// closed intent set. Unknown names yield (Chat, false) so a confused
// model degrades to conversation instead of failing.
func IntentForFunction(name string) (intent.Intent, bool) {
	for _, spec := range functionSpecs {
		if spec.Name == name {
			return spec.Intent, true
		}
	}
	return intent.Chat, false
}

// paramsFromArgs filters model-returned arguments down to the declared
// parameters of the named function, stringifying values along the way.
func paramsFromArgs(name string, args map[string]any) map[string]string {
	params := map[string]string{}
	for _, spec := range functionSpecs {
		if spec.Name != name {
			continue
		}
		for _, p := range spec.Params {
			if v, ok := args[p.Name]; ok {
				if s, ok := v.(string); ok && s != "" {
					params[p.Name] = s
				}
			}
		}
	}
	return params
}

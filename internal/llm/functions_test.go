package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

func TestFunctionSpecsCoverEveryDataIntent(t *testing.T) {
	t.Parallel()

	covered := make(map[intent.Intent]bool)
	for _, spec := range FunctionSpecs() {
		assert.NotEmpty(t, spec.Name)
		assert.NotEmpty(t, spec.Description)
		assert.True(t, spec.Intent.Valid(), "spec %s maps to unknown intent", spec.Name)
		covered[spec.Intent] = true
	}

	for _, it := range intent.All() {
		if it == intent.Chat {
			assert.False(t, covered[it], "chat must not have a function")
			continue
		}
		assert.True(t, covered[it], "intent %s has no function spec", it)
	}
}

func TestIntentForFunction(t *testing.T) {
	t.Parallel()

	it, ok := IntentForFunction("get_weather")
	require.True(t, ok)
	assert.Equal(t, intent.Weather, it)

	it, ok = IntentForFunction("get_stock_price")
	require.True(t, ok)
	assert.Equal(t, intent.Stock, it)

	it, ok = IntentForFunction("get_news")
	require.True(t, ok)
	assert.Equal(t, intent.News, it)

	it, ok = IntentForFunction("launch_rockets")
	assert.False(t, ok)
	assert.Equal(t, intent.Chat, it)
}

func TestParamsFromArgsFiltersUndeclared(t *testing.T) {
	t.Parallel()

	params := paramsFromArgs("get_weather", map[string]any{
		"city":    "Mumbai",
		"planet":  "Mars",
		"numeric": 42,
	})
	assert.Equal(t, map[string]string{"city": "Mumbai"}, params)
}

func TestDecisionFromCallUnknownFunctionDegradesToChat(t *testing.T) {
	t.Parallel()

	decision, err := decisionFromCall("made_up_tool", map[string]any{"x": "y"})
	require.NoError(t, err)
	assert.Equal(t, intent.Chat, decision.Intent)
	assert.Empty(t, decision.Params)
}

func TestBuildOpenAIToolsMatchesSpecs(t *testing.T) {
	t.Parallel()
	assert.Len(t, buildOpenAITools(), len(FunctionSpecs()))
}

func TestBuildGeminiFunctionsMatchesSpecs(t *testing.T) {
	t.Parallel()

	decls := buildGeminiFunctions()
	require.Len(t, decls, len(FunctionSpecs()))
	for i, spec := range FunctionSpecs() {
		assert.Equal(t, spec.Name, decls[i].Name)
		assert.Len(t, decls[i].Parameters.Properties, len(spec.Params))
	}
}

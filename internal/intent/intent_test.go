package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	for _, it := range All() {
		parsed, ok := Parse(string(it))
		assert.True(t, ok)
		assert.Equal(t, it, parsed)
		assert.True(t, it.Valid())
	}

	for _, raw := range []string{"", "WEATHER", "horoscope", "chat "} {
		_, ok := Parse(raw)
		assert.False(t, ok, "%q must not parse", raw)
	}
}

func TestChatDecision(t *testing.T) {
	t.Parallel()

	d := ChatDecision()
	assert.Equal(t, Chat, d.Intent)
	assert.NotNil(t, d.Params)
	assert.Empty(t, d.Params)
	assert.Empty(t, d.FunctionName)
}

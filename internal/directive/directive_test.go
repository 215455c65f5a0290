package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirectives(t *testing.T) {
	t.Run("single directive", func(t *testing.T) {
		result := ParseDirectives("!tokens=2000 Hello")
		assert.Equal(t, map[string]string{"!tokens": "2000"}, result.Values)
		assert.Equal(t, 13, result.EndCursor)
	})

	t.Run("multiple directives", func(t *testing.T) {
		result := ParseDirectives("!tokens=2000 !temp=1.5 Hello")
		assert.Equal(t, map[string]string{"!tokens": "2000", "!temp": "1.5"}, result.Values)
		assert.Equal(t, 23, result.EndCursor)
	})

	t.Run("stops at first non-directive", func(t *testing.T) {
		input := "!tokens=2000 Hello !temp=1.5"
		result := ParseDirectives(input)
		assert.Equal(t, map[string]string{"!tokens": "2000"}, result.Values)
		assert.Equal(t, "Hello !temp=1.5", input[result.EndCursor:])
	})

	t.Run("empty input", func(t *testing.T) {
		result := ParseDirectives("")
		assert.Empty(t, result.Values)
		assert.Equal(t, 0, result.EndCursor)
	})

	t.Run("no directives", func(t *testing.T) {
		result := ParseDirectives("Hello !tokens=5")
		assert.Empty(t, result.Values)
		assert.Equal(t, 0, result.EndCursor)
	})

	t.Run("directives without separating space", func(t *testing.T) {
		result := ParseDirectives("!temp=1.5!tokens=2000 Hello")
		assert.Equal(t, map[string]string{"!temp": "1.5", "!tokens": "2000"}, result.Values)
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		result := ParseDirectives("!tokens=10 !tokens=20 Hi")
		assert.Equal(t, map[string]string{"!tokens": "20"}, result.Values)
	})

	t.Run("directive without value is skipped", func(t *testing.T) {
		input := "!verbose !tokens=5 Hi"
		result := ParseDirectives(input)
		assert.Equal(t, map[string]string{"!tokens": "5"}, result.Values)
		assert.Equal(t, "Hi", input[result.EndCursor:])
	})

	t.Run("adjacent text is absorbed into the value", func(t *testing.T) {
		input := "!tokens=2000Hello"
		result := ParseDirectives(input)
		assert.Equal(t, map[string]string{"!tokens": "2000Hello"}, result.Values)
		assert.Equal(t, len(input), result.EndCursor)
	})
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Settings
	}{
		{"tokens then temp", "!tokens=2000 !temp=1.5 Hello", Settings{"Hello", 2000, 1.5}},
		{"temp then tokens", "!temp=1.5 !tokens=2000 Hello", Settings{"Hello", 2000, 1.5}},
		{"only tokens", "!tokens=2000 Hello", Settings{"Hello", 2000, DefaultTemperature}},
		{"only temp", "!temp=1.5 Hello", Settings{"Hello", DefaultMaxTokens, 1.5}},
		{"no space between directives", "!temp=1.5!tokens=2000 Hello", Settings{"Hello", 2000, 1.5}},
		{"word glued to single directive", "!tokens=2000Hello", Settings{"", 2000, DefaultTemperature}},
		{"word glued to last of multiple directives", "!tokens=2000!temp=1.5Hello", Settings{"", 2000, 1.5}},
		{"content from second word after tokens", "!tokens=2000Hello Another content", Settings{"Another content", 2000, DefaultTemperature}},
		{"content from second word after temp", "!temp=1.87Hello Another content", Settings{"Another content", DefaultMaxTokens, 1.87}},
		{"content from second word after multiple", "!tokens=2000!temp=1.5Hello Another content", Settings{"Another content", 2000, 1.5}},
		{"word glued to temp", "!temp=1.5Hello", Settings{"", DefaultMaxTokens, 1.5}},
		{"defaults without directives", "Hello", Settings{"Hello", DefaultMaxTokens, DefaultTemperature}},
		{"caps at maximum", "!tokens=10000 !temp=3.0 Hello", Settings{"Hello", MaxAllowedTokens, MaxTemperature}},
		{"invalid values", "!tokens=invalid !temp=notanumber Hello", Settings{"Hello", DefaultMaxTokens, DefaultTemperature}},
		{"mixed valid and invalid", "!tokens=2000 !temp=notanumber Hello", Settings{"Hello", 2000, DefaultTemperature}},
		{"negative values", "!tokens=-100 !temp=-0.5 Hello", Settings{"Hello", MinAllowedTokens, MinTemperature}},
		{"negative tokens", "!tokens=-100 Hello", Settings{"Hello", MinAllowedTokens, DefaultTemperature}},
		{"negative temperature", "!temp=-0.5 Hello", Settings{"Hello", DefaultMaxTokens, MinTemperature}},
		{"minimum tokens", "!tokens=1 Hello", Settings{"Hello", MinAllowedTokens, DefaultTemperature}},
		{"temperature at zero", "!temp=0 Hello", Settings{"Hello", DefaultMaxTokens, MinTemperature}},
		{"temperature at two", "!temp=2 Hello", Settings{"Hello", DefaultMaxTokens, MaxTemperature}},
		{"decimal temperature", "!temp=0.7 Hello", Settings{"Hello", DefaultMaxTokens, 0.7}},
		{"maximum tokens", "!tokens=8192 Hello", Settings{"Hello", MaxAllowedTokens, DefaultTemperature}},
		{"invalid temperature", "!temp=abc Hello", Settings{"Hello", DefaultMaxTokens, DefaultTemperature}},
		{"invalid tokens", "!tokens=xyz Hello", Settings{"Hello", DefaultMaxTokens, DefaultTemperature}},
		{"content after several spaces", "!tokens=2000   Hello", Settings{"Hello", 2000, DefaultTemperature}},
		{"empty content", "!tokens=2000", Settings{"", 2000, DefaultTemperature}},
		{"empty value", "!tokens= Hello", Settings{"Hello", DefaultMaxTokens, DefaultTemperature}},
		{"fractional tokens truncated", "!tokens=12.9 Hello", Settings{"Hello", 12, DefaultTemperature}},
		{"leading dot temperature", "!temp=.5 Hello", Settings{"Hello", DefaultMaxTokens, 0.5}},
		{"huge tokens saturate", "!tokens=99999999999999999999999 Hi", Settings{"Hi", MaxAllowedTokens, DefaultTemperature}},
		{"later directives ignored", "Hello !tokens=10", Settings{"Hello !tokens=10", DefaultMaxTokens, DefaultTemperature}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommands(tt.input))
		})
	}
}

func TestParser_CustomLimits(t *testing.T) {
	p := NewParser(Limits{
		DefaultMaxTokens:   100,
		MinTokens:          10,
		MaxTokens:          200,
		DefaultTemperature: 0.5,
		MinTemperature:     0.1,
		MaxTemperature:     1.0,
	})

	assert.Equal(t, Settings{"Hi", 200, 1.0}, p.Parse("!tokens=5000 !temp=9 Hi"))
	assert.Equal(t, Settings{"Hi", 10, 0.1}, p.Parse("!tokens=1 !temp=0 Hi"))
	assert.Equal(t, Settings{"Hi", 100, 0.5}, p.Parse("Hi"))
}

package directive

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	DefaultMaxTokens = 4096
	MinAllowedTokens = 1
	MaxAllowedTokens = 8192

	DefaultTemperature = 1.0
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
)

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// Settings are the per-request completion parameters derived from a message.
type Settings struct {
	Content     string
	MaxTokens   int
	Temperature float64
}

// Limits bound the values a user may request through directives.
type Limits struct {
	DefaultMaxTokens   int
	MinTokens          int
	MaxTokens          int
	DefaultTemperature float64
	MinTemperature     float64
	MaxTemperature     float64
}

func DefaultLimits() Limits {
	return Limits{
		DefaultMaxTokens:   DefaultMaxTokens,
		MinTokens:          MinAllowedTokens,
		MaxTokens:          MaxAllowedTokens,
		DefaultTemperature: DefaultTemperature,
		MinTemperature:     MinTemperature,
		MaxTemperature:     MaxTemperature,
	}
}

type Parser struct {
	limits Limits
}

func NewParser(limits Limits) *Parser {
	return &Parser{limits: limits}
}

// ParseCommands parses content with the default limits.
func ParseCommands(content string) Settings {
	return NewParser(DefaultLimits()).Parse(content)
}

// Parse never fails: unparsable values fall back to the defaults and every value is
// clamped into its allowed range.
func (p *Parser) Parse(content string) Settings {
	directives := ParseDirectives(content)

	settings := Settings{
		Content:     strings.TrimSpace(content[directives.EndCursor:]),
		MaxTokens:   p.limits.DefaultMaxTokens,
		Temperature: p.limits.DefaultTemperature,
	}

	if raw, ok := directives.Get(TokensDirective); ok {
		tokens, ok := parseIntPrefix(raw)
		if !ok {
			tokens = p.limits.DefaultMaxTokens
		}
		settings.MaxTokens = min(max(tokens, p.limits.MinTokens), p.limits.MaxTokens)
	}

	if raw, ok := directives.Get(TempDirective); ok {
		temp, ok := parseFloatPrefix(raw)
		if !ok {
			temp = p.limits.DefaultTemperature
		}
		settings.Temperature = min(max(temp, p.limits.MinTemperature), p.limits.MaxTemperature)
	}

	return settings
}

// parseIntPrefix reads the leading integer of s ("2000Hello" -> 2000). Values too
// large for an int saturate so that clamping still applies.
func parseIntPrefix(s string) (int, bool) {
	match := intPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		if strings.HasPrefix(match, "-") {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return int(v), true
}

// parseFloatPrefix reads the leading decimal number of s ("1.87Hello" -> 1.87).
func parseFloatPrefix(s string) (float64, bool) {
	match := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil && !math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

package ai

import "strings"

// StripReasoning removes inline reasoning blocks some chat models put in
// front of the answer and returns both parts.
func StripReasoning(text string) (content, reasoning string) {
	content = text
	for _, tag := range []string{"think", "reasoning"} {
		open, closing := "<"+tag+">", "</"+tag+">"
		start := strings.Index(content, open)
		end := strings.Index(content, closing)
		if start >= 0 && end > start {
			reasoning = strings.TrimSpace(content[start+len(open) : end])
			content = strings.TrimSpace(content[:start] + content[end+len(closing):])
			return content, reasoning
		}
	}
	return strings.TrimSpace(content), ""
}

package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the chunk size used when the caller has no platform limit of its own.
const DefaultMaxLength = 1500

const (
	lineSeparator = "\n"
	wordSeparator = " "
)

// Split breaks text into pieces no longer than maxLength characters. Lines are kept together
// when they fit, over-long lines are broken on spaces, and a single word is never
// cut even if it alone exceeds maxLength.
func Split(text string, maxLength int) []string {
	if text == "" {
		return []string{}
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	s := splitter{maxLength: maxLength}
	for line := range strings.SplitSeq(text, lineSeparator) {
		if s.fits(line, lineSeparator) {
			s.add(line, lineSeparator)
			continue
		}

		s.flush()
		if utf8.RuneCountInString(line) <= maxLength {
			s.current = line
			continue
		}

		for word := range strings.SplitSeq(line, wordSeparator) {
			if s.fits(word, wordSeparator) {
				s.add(word, wordSeparator)
				continue
			}
			s.flush()
			s.current = word
		}
	}
	s.flush()

	return s.chunks
}

type splitter struct {
	maxLength int
	current   string
	chunks    []string
}

func (s *splitter) fits(part, sep string) bool {
	size := utf8.RuneCountInString(s.current) + utf8.RuneCountInString(part)
	if s.current != "" {
		size += len(sep)
	}
	return size <= s.maxLength
}

func (s *splitter) add(part, sep string) {
	if s.current != "" {
		s.current += sep
	}
	s.current += part
}

func (s *splitter) flush() {
	if s.current == "" {
		return
	}
	s.chunks = append(s.chunks, strings.TrimSpace(s.current))
	s.current = ""
}

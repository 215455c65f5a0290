// Package directive parses the inline settings a user can put in front of a chat
// message, e.g. "!tokens=2000 !temp=1.5 Hello".
package directive

const (
	Sentinel = '!'

	TokensDirective = "!tokens"
	TempDirective   = "!temp"
)

// Directives is the result of scanning the head of a message. EndCursor is the byte
// offset where scanning stopped; everything from there on is regular content.
type Directives struct {
	Values    map[string]string
	EndCursor int
}

// Get returns the raw value of a directive and whether it was present.
func (d Directives) Get(name string) (string, bool) {
	v, ok := d.Values[name]
	return v, ok
}

// ParseDirectives scans a contiguous leading run of !name=value directives in one
// pass. Only the head of the message is considered: the first character that does
// not start a directive ends the scan, even if more directives follow later.
func ParseDirectives(content string) Directives {
	result := Directives{Values: make(map[string]string)}

	cursor := 0
	for cursor < len(content) && content[cursor] == Sentinel {
		nameStart := cursor
		cursor++
		for cursor < len(content) && !isNameEnd(content[cursor]) {
			cursor++
		}
		name := content[nameStart:cursor]

		if cursor < len(content) && content[cursor] == '=' {
			cursor++
			valueStart := cursor
			for cursor < len(content) && !isValueEnd(content[cursor]) {
				cursor++
			}
			result.Values[name] = content[valueStart:cursor]
		}

		for cursor < len(content) && content[cursor] == ' ' {
			cursor++
		}
	}
	result.EndCursor = cursor

	return result
}

func isNameEnd(c byte) bool {
	return c == '=' || c == ' ' || c == Sentinel
}

func isValueEnd(c byte) bool {
	return c == ' ' || c == Sentinel
}

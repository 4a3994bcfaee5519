package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoJSON reports that no well-formed JSON object could be found in a
// completion response.
var ErrNoJSON = errors.New("no JSON object in completion output")

// ParseJSON decodes the first well-formed JSON object found in text into v.
// Models routinely wrap their JSON in prose, markdown fences or trailing
// commentary, so the whole text is never assumed to be JSON: candidate
// objects are located by brace matching and tried in order until one
// decodes.
func ParseJSON(text string, v any) error {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end, ok := matchObject(text, start)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(text[start:end]), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNoJSON, snippet(text))
}

// matchObject returns the index just past the object opened at start, by
// walking the text with string- and escape-awareness.
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func snippet(text string) string {
	const max = 80
	if len(text) <= max {
		return text
	}
	return text[:max]
}

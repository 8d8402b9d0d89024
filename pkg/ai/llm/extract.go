package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON locates the first balanced {...} or [...] span in free-text
// model output and returns it as valid JSON. Models routinely wrap their
// payload in prose or code fences and leave raw control characters inside
// string values; both are repaired here. Returns an error when no balanced
// span exists or the cleaned span still fails to parse.
func extractJSON(raw string) (json.RawMessage, error) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	open := raw[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	end := -1

scan:
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// braces inside string values don't count
		case ch == open:
			depth++
		case ch == closer:
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	if end < 0 {
		return nil, fmt.Errorf("unbalanced JSON in response")
	}

	cleaned := escapeControlChars(raw[start : end+1])
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("response span is not valid JSON")
	}

	return json.RawMessage(cleaned), nil
}

// escapeControlChars replaces literal control characters inside JSON string
// values with their escape sequences. Outside strings the input is copied
// unchanged.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			b.WriteByte(ch)
			escaped = false
			continue
		}

		if inString {
			switch ch {
			case '\\':
				b.WriteByte(ch)
				escaped = true
				continue
			case '"':
				inString = false
				b.WriteByte(ch)
				continue
			case '\n':
				b.WriteString(`\n`)
				continue
			case '\t':
				b.WriteString(`\t`)
				continue
			case '\r':
				b.WriteString(`\r`)
				continue
			case '\b':
				b.WriteString(`\b`)
				continue
			case '\f':
				b.WriteString(`\f`)
				continue
			}
			b.WriteByte(ch)
			continue
		}

		if ch == '"' {
			inString = true
		}
		b.WriteByte(ch)
	}

	return b.String()
}

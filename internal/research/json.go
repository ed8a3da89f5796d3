// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"encoding/json"
	"errors"
	"strings"
)

// errNoJSONObject reports that no balanced, valid JSON object was found.
var errNoJSONObject = errors.New("no JSON object found in response")

// extractJSON pulls a JSON document out of a model response in two steps:
// the trimmed text is returned as-is when it already parses, otherwise the
// first balanced {...} object that parses is returned. Markdown code fences
// and conversational wrapper text fall away in the second step.
func extractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	for start := strings.IndexByte(trimmed, '{'); start >= 0; {
		if end := matchBrace(trimmed, start); end >= 0 {
			candidate := trimmed[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
		next := strings.IndexByte(trimmed[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", errNoJSONObject
}

// matchBrace returns the index of the '}' closing the '{' at open, skipping
// braces inside JSON strings. It returns -1 when the object is unterminated.
func matchBrace(s string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
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
				return i
			}
		}
	}
	return -1
}

package websocket

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Match scans patterns in order and returns the index of the first one
// that matches payload, or -1. See spec.md §4.9.
func Match(patterns []MessagePattern, payload string) int {
	for i, p := range patterns {
		if matchOne(p, payload) {
			return i
		}
	}
	return -1
}

func matchOne(p MessagePattern, payload string) bool {
	switch p.Kind {
	case PatternExact:
		return payload == p.Pattern
	case PatternContains:
		return strings.Contains(payload, p.Pattern)
	case PatternRegex:
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(payload)
	case PatternJSONPath:
		return matchJSONPath(p.Pattern, payload)
	default:
		return false
	}
}

// matchJSONPath handles patterns of the form "dotted.path=expected":
// descend the parsed JSON payload along the dotted path and compare its
// stringified value against expected.
func matchJSONPath(pattern, payload string) bool {
	path, expected, ok := strings.Cut(pattern, "=")
	if !ok {
		return false
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return false
	}

	current := parsed
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return false
		}
		current, ok = m[part]
		if !ok {
			return false
		}
	}
	return stringify(current) == expected
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// isJSON reports whether payload parses as JSON, for the incoming-frame
// messageType log field.
func isJSON(payload []byte) bool {
	var v interface{}
	return json.Unmarshal(payload, &v) == nil
}

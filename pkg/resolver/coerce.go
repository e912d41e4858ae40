package resolver

import (
	"encoding/json"
	"strconv"
	"strings"
)

// coerceValue applies type coercion to every raw string value taken from
// an environment variable or CLI argument:
// true/false (case-insensitive) -> bool; "null" -> nil (explicit clear);
// a string parseable as a number -> number; a string starting with '['
// or '{' -> JSON-decoded, falling back to the raw string on failure;
// otherwise the raw string.
func coerceValue(raw string) interface{} {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v interface{}
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}

	return raw
}

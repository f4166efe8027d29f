package utils

import "strings"

// TruncateForLog collapses whitespace runs into single spaces and keeps at
// most limit runes, appending an ellipsis when something was cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

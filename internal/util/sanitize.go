package util

import (
	"regexp"
	"strings"
)

const maxFilenameLen = 50

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)

// SanitizeFilename reduces a user-supplied name to a safe attachment base
// name: disallowed characters are dropped, spaces become underscores and the
// result is capped at 50 characters. An empty result falls back to
// "certificate".
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "")
	safe = strings.TrimSpace(safe)
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		return "certificate"
	}
	if len(safe) > maxFilenameLen {
		safe = safe[:maxFilenameLen]
	}
	return safe
}

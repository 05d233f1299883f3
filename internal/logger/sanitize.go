package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in logs.
	MaxPathLength = 500
	// MaxErrorMessageLength caps error messages in logs.
	MaxErrorMessageLength = 1000
)

// SanitizePath makes a URL path safe for logging: valid UTF-8, no control
// characters, bounded length.
func SanitizePath(path string) string {
	return sanitize(path, MaxPathLength)
}

// SanitizeError makes an error message safe for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error(), MaxErrorMessageLength)
}

func sanitize(s string, maxLength int) string {
	if s == "" {
		return ""
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

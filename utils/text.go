package utils

import "strings"

const PreviewLength = 50

// Truncate cuts s to max runes and appends "..." when anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// NonEmpty trims s and rejects whitespace-only input.
func NonEmpty(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrEmptyText
	}
	return trimmed, nil
}

// NullIfEmpty trims s and maps the empty result to nil.
func NullIfEmpty(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

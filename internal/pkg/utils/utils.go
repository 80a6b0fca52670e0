package utils

import "strings"

// TruncateRunes shortens s to at most limit runes, never splitting a
// multi-byte character.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// KeywordsFromTitle turns a product title into a comma-separated keyword
// list by splitting on whitespace.
func KeywordsFromTitle(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, ",")
}

package utils

import (
	"strings"
	"unicode"
)

// TrimOrEmpty normalizes user input.
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCode trims and uppercases identifiers such as plates and spots.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DigitsOnly strips everything but 0-9.
func DigitsOnly(s string) string {
	var out strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// ContainsFold reports whether substr is within s, case-insensitively.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

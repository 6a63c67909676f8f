// Package strings holds small text helpers shared by console output code.
package strings

import "strings"

// DefaultErrorMaxLen caps error text rendered into table cells.
const DefaultErrorMaxLen = 48

// MinTruncateLen is the smallest usable cap: one rune plus "...".
const MinTruncateLen = 4

// Truncate collapses whitespace runs (including newlines) to single spaces
// and caps the result at maxLen runes, appending "..." when text was
// dropped. Rune-based slicing keeps multi-byte characters intact.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Package textnorm turns raw extracted text into the canonical form used for
// keyword matching.
package textnorm

import (
	"strings"
)

// Normalize lower-cases raw text, replaces every rune that is not an ASCII
// lowercase letter with a space, collapses whitespace runs and trims the result.
// The output contains only 'a'-'z' and single spaces, so Normalize is idempotent.
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))

	pendingSpace := false
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}

// WordCount returns the number of whitespace separated words in raw text.
func WordCount(raw string) int {
	return len(strings.Fields(raw))
}
